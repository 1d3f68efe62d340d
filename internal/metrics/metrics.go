// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for scraper_products_total.
const (
	ProductEmitted        = "emitted"
	ProductSkippedRaw     = "skipped_raw"
	ProductSkippedCleaned = "skipped_cleaned"
)

var (
	scraperPagesTotal          *prometheus.CounterVec
	scraperBytesTotal          *prometheus.CounterVec
	scraperFetchAttemptsTotal  *prometheus.CounterVec
	scraperProductsTotal       *prometheus.CounterVec
	scraperRunsTotal           *prometheus.CounterVec
	scraperRunDurationSeconds  prometheus.Histogram
	scraperRateLimitDelay      *prometheus.HistogramVec
	scraperPromotionsTotal     *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scraperPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total number of listing pages processed, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		scraperBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_bytes_total",
				Help: "Total number of bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		scraperFetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fetch_attempts_total",
				Help: "Total number of page fetch attempts, labeled by result.",
			},
			[]string{"result"},
		)

		scraperProductsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_products_total",
				Help: "Total number of product cards seen, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scraperRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_runs_total",
				Help: "Total number of scrape runs, labeled by status.",
			},
			[]string{"status"},
		)

		scraperRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_run_duration_seconds",
				Help:    "Histogram of end-to-end scrape run latencies.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		)

		scraperRateLimitDelay = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_rate_limit_delay_seconds",
				Help:    "Time spent waiting on the per-host rate limiter.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"site"},
		)

		scraperPromotionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_headless_promotions_total",
				Help: "Pages refetched with the headless renderer after the HTTP probe, labeled by site.",
			},
			[]string{"site"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method, route pattern, and code.",
			},
			[]string{"method", "route", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObservePage records one processed listing page.
func ObservePage(site string, status string, bytesFetched int) {
	Init()
	sanitizedSite := SanitizeSite(site)
	scraperPagesTotal.WithLabelValues(sanitizedSite, status).Inc()
	if bytesFetched > 0 {
		scraperBytesTotal.WithLabelValues(sanitizedSite).Add(float64(bytesFetched))
	}
}

// ObserveFetchAttempt records a single fetch attempt result ("success" or "failure").
func ObserveFetchAttempt(result string) {
	Init()
	scraperFetchAttemptsTotal.WithLabelValues(result).Inc()
}

// ObserveProducts adds n product cards with the given outcome.
func ObserveProducts(outcome string, n int) {
	Init()
	if n <= 0 {
		return
	}
	scraperProductsTotal.WithLabelValues(outcome).Add(float64(n))
}

// ObserveRun records a finished scrape run.
func ObserveRun(status string, duration time.Duration) {
	Init()
	scraperRunsTotal.WithLabelValues(status).Inc()
	scraperRunDurationSeconds.Observe(duration.Seconds())
}

// ObserveRateLimitDelay records time spent waiting for a rate limit token.
func ObserveRateLimitDelay(site string, d time.Duration) {
	Init()
	scraperRateLimitDelay.WithLabelValues(SanitizeSite(site)).Observe(d.Seconds())
}

// ObservePromotion counts a probe that was promoted to a headless fetch.
func ObservePromotion(site string) {
	Init()
	scraperPromotionsTotal.WithLabelValues(SanitizeSite(site)).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
