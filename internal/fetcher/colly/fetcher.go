// Package collyfetcher implements catalog.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0"

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs a single GET per call. Retries are layered on top by the
// retry package.
type Fetcher struct {
	cfg Config
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Fetcher{cfg: cfg}
}

// Fetch executes a single HTTP GET using Colly. Any non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, request catalog.FetchRequest) (catalog.Page, error) {
	var (
		result   catalog.Page
		fetchErr error
	)
	collector, err := f.buildCollector(request)
	if err != nil {
		return catalog.Page{}, err
	}
	f.configureCollectorHooks(collector, time.Now(), &result, &fetchErr)

	if err := f.runCollector(ctx, collector, request.URL, &fetchErr); err != nil {
		return catalog.Page{}, err
	}
	return result, nil
}

// buildCollector creates a fresh collector per request. Collectors cloned from
// a shared base share their HTTP backend, so a per-request proxy would leak
// into concurrent fetches.
func (f *Fetcher) buildCollector(request catalog.FetchRequest) (*colly.Collector, error) {
	proxyURL, err := catalog.ParseProxy(request.Proxy)
	if err != nil {
		return nil, err
	}
	collector := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	collector.ParseHTTPErrorResponse = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(newHTTPTransport(proxyURL))
	return collector, nil
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	start time.Time,
	result *catalog.Page,
	fetchErr *error,
) {
	hooks.OnResponse(func(r *colly.Response) {
		if r.StatusCode < http.StatusOK || r.StatusCode >= http.StatusMultipleChoices {
			*fetchErr = fmt.Errorf("unexpected status %d", r.StatusCode)
			return
		}
		*result = catalog.Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport(proxyURL *url.URL) *http.Transport {
	proxy := http.ProxyFromEnvironment
	if proxyURL != nil {
		proxy = http.ProxyURL(proxyURL)
	}
	return &http.Transport{
		Proxy: proxy,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
