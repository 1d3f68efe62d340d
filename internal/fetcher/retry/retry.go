// Package retry wraps a catalog.Fetcher with a bounded, fixed-delay retry loop.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/metrics"
)

// ErrRetriesExhausted is returned once every attempt for a URL has failed.
var ErrRetriesExhausted = errors.New("fetch retries exhausted")

// Policy is a fixed-delay retry policy.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy makes three attempts five seconds apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 5 * time.Second}
}

// ShouldRetry reports whether the attempt budget allows another try after a
// failed attempt. Every failure kind is retryable, per-request timeouts
// included; giving up on cancellation is decided from the caller's context.
func (p Policy) ShouldRetry(err error, attempt int) bool {
	return err != nil && attempt < p.attempts()
}

// Backoff returns the wait before the next attempt. It does not grow.
func (p Policy) Backoff(int) time.Duration {
	if p.Delay < 0 {
		return 0
	}
	return p.Delay
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Fetcher retries the wrapped fetcher according to a Policy.
type Fetcher struct {
	next   catalog.Fetcher
	policy Policy
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New wraps next with policy.
func New(next catalog.Fetcher, policy Policy, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		next:   next,
		policy: policy,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Fetch calls the wrapped fetcher until it succeeds or the policy gives up.
// Every failed attempt is logged at warn level and the final failure at error
// level; the returned error wraps ErrRetriesExhausted and the last cause.
func (f *Fetcher) Fetch(ctx context.Context, request catalog.FetchRequest) (catalog.Page, error) {
	var lastErr error
	attempt := 0
	for {
		attempt++
		page, err := f.next.Fetch(ctx, request)
		if err == nil {
			metrics.ObserveFetchAttempt("success")
			return page, nil
		}
		lastErr = err
		metrics.ObserveFetchAttempt("failure")
		f.logger.Warn("fetch attempt failed",
			zap.String("url", request.URL),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.policy.attempts()),
			zap.Error(err),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			lastErr = fmt.Errorf("%w (last error: %w)", ctxErr, err)
			break
		}
		if !f.policy.ShouldRetry(err, attempt) {
			break
		}
		if err := f.sleep(ctx, f.policy.Backoff(attempt)); err != nil {
			lastErr = err
			break
		}
	}

	f.logger.Error("fetch failed",
		zap.String("url", request.URL),
		zap.Int("attempts", attempt),
		zap.Error(lastErr),
	)
	return catalog.Page{}, fmt.Errorf("%w: %s after %d attempts: %w", ErrRetriesExhausted, request.URL, attempt, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
