package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/metrics"
)

const tracerName = "github.com/JakeFAU/catalog-scraper/internal/scraper"

// ErrPersist is returned when the scraped products could not be saved.
var ErrPersist = errors.New("persist products")

// Summary describes a completed run.
type Summary struct {
	RunID    string
	Pages    int
	Products []catalog.Product
	Location string
	Duration time.Duration
}

// Runner scrapes, saves the result, then announces the run.
type Runner struct {
	scraper   *Scraper
	store     catalog.ProductStore
	publisher catalog.Publisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func() (uuid.UUID, error)
}

// NewRunner wires a Runner. publisher may be nil.
func NewRunner(s *Scraper, store catalog.ProductStore, publisher catalog.Publisher, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		scraper:   s,
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewV7,
	}
}

// Run performs one scrape of pages 1..pages and overwrites the stored document
// with the result. Scrape cancellation wraps ErrScrapeAborted and storage
// failures wrap ErrPersist. Publishing is best effort.
func (r *Runner) Run(ctx context.Context, pages int, proxy string) (Summary, error) {
	start := r.now()
	runID := r.runID()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "scrape.run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID), attribute.Int("pages", pages))

	logger := r.logger.With(zap.String("run_id", runID))
	if sc := span.SpanContext(); sc.HasTraceID() {
		logger = logger.With(zap.String("trace_id", sc.TraceID().String()))
	}
	logger.Info("scrape started", zap.Int("pages", pages), zap.Bool("proxy", proxy != ""))

	products, err := r.scraper.Scrape(ctx, pages, proxy)
	if err != nil {
		metrics.ObserveRun("aborted", r.now().Sub(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape aborted")
		logger.Error("scrape aborted", zap.Error(err))
		return Summary{}, err
	}

	if err := r.store.Save(ctx, products); err != nil {
		metrics.ObserveRun("persist_failed", r.now().Sub(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		logger.Error("saving products failed", zap.String("location", r.store.Location()), zap.Error(err))
		return Summary{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	span.SetAttributes(attribute.Int("products", len(products)))

	summary := Summary{
		RunID:    runID,
		Pages:    pages,
		Products: products,
		Location: r.store.Location(),
		Duration: r.now().Sub(start),
	}
	metrics.ObserveRun("success", summary.Duration)
	logger.Info("scrape finished",
		zap.Int("products", len(products)),
		zap.Int("pages", pages),
		zap.String("location", summary.Location),
		zap.Duration("duration", summary.Duration),
	)

	r.publish(ctx, logger, summary)
	return summary, nil
}

func (r *Runner) publish(ctx context.Context, logger *zap.Logger, summary Summary) {
	if r.publisher == nil {
		return
	}
	event := catalog.ScrapeCompleted{
		RunID:      summary.RunID,
		Products:   len(summary.Products),
		Pages:      summary.Pages,
		BaseURL:    r.scraper.BaseURL(),
		Location:   summary.Location,
		FinishedAt: r.now().UTC(),
	}
	messageID, err := r.publisher.Publish(ctx, event)
	if err != nil {
		logger.Warn("publish completion event failed", zap.Error(err))
		return
	}
	logger.Debug("completion event published", zap.String("message_id", messageID))
}

func (r *Runner) runID() string {
	id, err := r.newID()
	if err != nil {
		r.logger.Warn("generate run id", zap.Error(err))
		return ""
	}
	return id.String()
}
