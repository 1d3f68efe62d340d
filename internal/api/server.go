package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/metrics"
	"github.com/JakeFAU/catalog-scraper/internal/scraper"
)

// Runner executes one scrape run.
type Runner interface {
	Run(ctx context.Context, pages int, proxy string) (scraper.Summary, error)
}

// Options configures request handling.
type Options struct {
	Token          string
	DefaultPages   int
	MaxPages       int
	RequestTimeout time.Duration
}

// Server wires HTTP handlers to the scrape runner and product store.
type Server struct {
	router chi.Router
	runner Runner
	store  catalog.ProductStore
	opts   Options
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner Runner, store catalog.ProductStore, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultPages <= 0 {
		opts.DefaultPages = 5
	}
	if opts.MaxPages < opts.DefaultPages {
		opts.MaxPages = opts.DefaultPages
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Minute
	}
	s := &Server{
		runner: runner,
		store:  store,
		opts:   opts,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(bearerAuthMiddleware(opts.Token))
		// A run is bounded by its page count and retry budget, not a wall clock.
		r.Post("/scrape/", s.scrape)
		r.Post("/scrape", s.scrape)
		r.With(timeoutMiddleware(opts.RequestTimeout)).Get("/products", s.products)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if s.runner == nil || s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure means the client went away.
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
