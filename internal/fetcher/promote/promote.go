// Package promote probes a page over plain HTTP and refetches it with the
// headless renderer when the probe looks like a client-rendered shell.
package promote

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/metrics"
)

// Fetcher tries probe first and falls back to renderer when the detector
// asks for it.
type Fetcher struct {
	probe    catalog.Fetcher
	renderer catalog.Fetcher
	detector *Heuristic
	logger   *zap.Logger
}

// New builds a promoting fetcher. A nil detector uses NewHeuristic(0).
func New(probe, renderer catalog.Fetcher, detector *Heuristic, logger *zap.Logger) *Fetcher {
	if detector == nil {
		detector = NewHeuristic(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{probe: probe, renderer: renderer, detector: detector, logger: logger}
}

// Fetch returns the probe page unless the detector promotes it. Probe errors
// are returned unchanged so the retry layer sees them.
func (f *Fetcher) Fetch(ctx context.Context, request catalog.FetchRequest) (catalog.Page, error) {
	page, err := f.probe.Fetch(ctx, request)
	if err != nil {
		return catalog.Page{}, err
	}
	if !f.detector.ShouldPromote(page) {
		return page, nil
	}

	f.logger.Info("promoting page to headless render",
		zap.String("url", request.URL),
		zap.Int("probe_bytes", len(page.Body)),
	)
	metrics.ObservePromotion(request.URL)
	return f.renderer.Fetch(ctx, request)
}
