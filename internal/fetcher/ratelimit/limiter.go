// Package ratelimit paces page fetches with a per-host token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/metrics"
)

// Config holds rate limiter configuration. A non-positive RPS disables
// limiting.
type Config struct {
	RPS   float64
	Burst int
}

// Fetcher waits for a token for the target host before delegating.
type Fetcher struct {
	next catalog.Fetcher

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New wraps next with per-host limiting.
func New(next catalog.Fetcher, cfg Config) *Fetcher {
	limit := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Fetcher{
		next:     next,
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

// Fetch blocks until the host has a free token, then fetches.
func (f *Fetcher) Fetch(ctx context.Context, request catalog.FetchRequest) (catalog.Page, error) {
	if err := f.Wait(ctx, request.URL); err != nil {
		return catalog.Page{}, err
	}
	return f.next.Fetch(ctx, request)
}

// Wait blocks until a token is available for the URL's host.
func (f *Fetcher) Wait(ctx context.Context, rawURL string) error {
	site := metrics.SanitizeSite(rawURL)
	limiter := f.limiterFor(site)

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveRateLimitDelay(site, waited)
	}
	return nil
}

func (f *Fetcher) limiterFor(site string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	limiter, ok := f.limiters[site]
	if !ok {
		limiter = rate.NewLimiter(f.limit, f.burst)
		f.limiters[site] = limiter
	}
	return limiter
}
