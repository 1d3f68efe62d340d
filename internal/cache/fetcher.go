package cache

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

// Fetcher serves pages from a PageCache and fills it on successful fetches.
// Cache errors are logged and otherwise ignored.
type Fetcher struct {
	next   catalog.Fetcher
	cache  catalog.PageCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewFetcher decorates next with cache.
func NewFetcher(next catalog.Fetcher, cache catalog.PageCache, ttl time.Duration, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Fetch implements catalog.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, request catalog.FetchRequest) (catalog.Page, error) {
	key := Key(request.URL)
	body, ok, err := f.cache.Get(ctx, key)
	switch {
	case err != nil:
		f.logger.Warn("page cache read failed", zap.String("url", request.URL), zap.Error(err))
	case ok:
		f.logger.Debug("page cache hit", zap.String("url", request.URL))
		return catalog.Page{
			URL:        request.URL,
			StatusCode: http.StatusOK,
			Body:       body,
			FromCache:  true,
		}, nil
	}

	page, err := f.next.Fetch(ctx, request)
	if err != nil {
		return catalog.Page{}, err
	}
	if err := f.cache.Set(ctx, key, page.Body, f.ttl); err != nil {
		f.logger.Warn("page cache write failed", zap.String("url", request.URL), zap.Error(err))
	}
	return page, nil
}
