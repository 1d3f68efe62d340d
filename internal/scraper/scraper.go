// Package scraper drives a scrape run: it walks the listing pages in order,
// extracts products from each, and hands the result to storage.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/extract"
	"github.com/JakeFAU/catalog-scraper/internal/metrics"
)

// ErrScrapeAborted is returned when the run is canceled before every page was visited.
var ErrScrapeAborted = errors.New("scrape aborted")

// Scraper fetches and extracts pages 1..N of a listing.
type Scraper struct {
	fetcher   catalog.Fetcher
	extractor *extract.Extractor
	baseURL   string
	logger    *zap.Logger
}

// New builds a Scraper for the listing rooted at baseURL.
func New(fetcher catalog.Fetcher, extractor *extract.Extractor, baseURL string, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// BaseURL returns the listing root the scraper walks.
func (s *Scraper) BaseURL() string {
	return s.baseURL
}

// PageURL returns the URL of listing page n: the base with a trailing slash
// followed by "page/<n>/".
func PageURL(baseURL string, n int) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return fmt.Sprintf("%spage/%d/", baseURL, n)
}

// Scrape visits pages 1..pages sequentially and returns every valid product in
// page order, then document order. A page that cannot be fetched contributes
// nothing and the run moves on. The only error is cancellation of ctx.
func (s *Scraper) Scrape(ctx context.Context, pages int, proxy string) ([]catalog.Product, error) {
	products := make([]catalog.Product, 0)
	site := metrics.SanitizeSite(s.baseURL)

	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w before page %d: %w", ErrScrapeAborted, n, err)
		}
		found, err := s.scrapePage(ctx, site, n, proxy)
		if err != nil {
			return nil, err
		}
		products = append(products, found...)
		s.logger.Info("page scraped",
			zap.Int("page", n),
			zap.Int("page_products", len(found)),
			zap.Int("total_products", len(products)),
		)
	}
	return products, nil
}

// scrapePage fetches and extracts one page. A fetch failure yields no
// products and no error; only cancellation is returned.
func (s *Scraper) scrapePage(ctx context.Context, site string, n int, proxy string) ([]catalog.Product, error) {
	pageURL := PageURL(s.baseURL, n)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "scrape.page",
		trace.WithAttributes(attribute.Int("page", n), attribute.String("url", pageURL)))
	defer span.End()

	page, err := s.fetcher.Fetch(ctx, catalog.FetchRequest{URL: pageURL, Proxy: proxy})
	if err != nil {
		span.RecordError(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			span.SetStatus(codes.Error, "canceled")
			return nil, fmt.Errorf("%w on page %d: %w", ErrScrapeAborted, n, ctxErr)
		}
		span.SetStatus(codes.Error, "fetch failed")
		metrics.ObservePage(site, "failed", 0)
		s.logger.Error("skipping page",
			zap.Int("page", n),
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return nil, nil
	}

	status := "fetched"
	if page.FromCache {
		status = "cached"
	}
	metrics.ObservePage(site, status, len(page.Body))

	found, stats := s.extractor.ExtractWithStats(page.Body, n)
	metrics.ObserveProducts(metrics.ProductEmitted, stats.Emitted)
	metrics.ObserveProducts(metrics.ProductSkippedRaw, stats.SkippedRaw)
	metrics.ObserveProducts(metrics.ProductSkippedCleaned, stats.SkippedCleaned)

	span.SetAttributes(
		attribute.Bool("from_cache", page.FromCache),
		attribute.Int("products", stats.Emitted),
		attribute.Int("skipped", stats.SkippedRaw+stats.SkippedCleaned),
	)
	s.logger.Debug("page extracted",
		zap.Int("page", n),
		zap.Int("blocks", stats.Blocks),
		zap.Duration("duration", page.Duration),
		zap.Bool("from_cache", page.FromCache),
	)
	return found, nil
}
