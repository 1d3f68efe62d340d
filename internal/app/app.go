// Package app builds the scraper's long-lived services from configuration and
// runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/catalog-scraper/internal/api"
	"github.com/JakeFAU/catalog-scraper/internal/cache"
	"github.com/JakeFAU/catalog-scraper/internal/catalog"
	"github.com/JakeFAU/catalog-scraper/internal/config"
	"github.com/JakeFAU/catalog-scraper/internal/extract"
	collyfetcher "github.com/JakeFAU/catalog-scraper/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/catalog-scraper/internal/fetcher/headless"
	"github.com/JakeFAU/catalog-scraper/internal/fetcher/promote"
	"github.com/JakeFAU/catalog-scraper/internal/fetcher/ratelimit"
	"github.com/JakeFAU/catalog-scraper/internal/fetcher/retry"
	"github.com/JakeFAU/catalog-scraper/internal/metrics"
	memorypublisher "github.com/JakeFAU/catalog-scraper/internal/publisher/memory"
	gcppublisher "github.com/JakeFAU/catalog-scraper/internal/publisher/pubsub"
	"github.com/JakeFAU/catalog-scraper/internal/scraper"
	gcsstorage "github.com/JakeFAU/catalog-scraper/internal/storage/gcs"
	localstorage "github.com/JakeFAU/catalog-scraper/internal/storage/local"
	memorystorage "github.com/JakeFAU/catalog-scraper/internal/storage/memory"
	pgstore "github.com/JakeFAU/catalog-scraper/internal/storage/postgres"
	"github.com/JakeFAU/catalog-scraper/internal/telemetry"
)

const (
	serviceName     = "catalog-scraper"
	shutdownTimeout = 10 * time.Second
)

// App contains the application's dependencies.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	fetcher   catalog.Fetcher
	store     catalog.ProductStore
	publisher catalog.Publisher
	runner    *scraper.Runner

	headless        *headlessfetcher.Fetcher
	redisCache      *cache.Redis
	gcsClient       *storage.Client
	pgStore         *pgstore.Store
	pubsubClient    *pubsub.Client
	pubsubPublisher *gcppublisher.Publisher
	tracerProvider  *sdktrace.TracerProvider
}

// Build creates the application's dependencies. On error every resource
// opened so far is released.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.closeInfrastructure()
		}
	}()

	logger.Info("building application dependencies",
		zap.String("base_url", cfg.Scraper.BaseURL),
		zap.String("fetch_mode", cfg.Fetch.Mode),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	if a.tracerProvider, err = telemetry.InitTracerProvider(ctx, serviceName); err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}
	if a.fetcher, err = a.setupFetcher(ctx); err != nil {
		return nil, err
	}
	if a.store, err = a.setupStorage(ctx); err != nil {
		return nil, err
	}
	if a.publisher, err = a.setupPublisher(ctx); err != nil {
		return nil, err
	}

	extractor := extract.New(extract.Config{AllowZeroPrice: cfg.Extract.AllowZeroPrice}, logger.Named("extract"))
	s := scraper.New(a.fetcher, extractor, cfg.Scraper.BaseURL, logger.Named("scraper"))
	a.runner = scraper.NewRunner(s, a.store, a.publisher, logger.Named("runner"))
	return a, nil
}

func (a *App) setupFetcher(ctx context.Context) (catalog.Fetcher, error) {
	probe := collyfetcher.New(collyfetcher.Config{
		UserAgent: a.cfg.Fetch.UserAgent,
		Timeout:   a.cfg.FetchTimeout(),
	})

	var base catalog.Fetcher = probe
	switch a.cfg.Fetch.Mode {
	case config.FetchModeHeadless:
		base = a.newHeadless()
		a.logger.Info("using headless fetcher")
	case config.FetchModeAuto:
		base = promote.New(probe, a.newHeadless(),
			promote.NewHeuristic(a.cfg.Fetch.PromoteBodyThreshold), a.logger.Named("promote"))
		a.logger.Info("using HTTP probe with headless promotion")
	}

	if a.cfg.Fetch.RateLimitRPS > 0 {
		base = ratelimit.New(base, ratelimit.Config{
			RPS:   a.cfg.Fetch.RateLimitRPS,
			Burst: a.cfg.Fetch.RateLimitBurst,
		})
		a.logger.Info("per-host rate limit enabled", zap.Float64("rps", a.cfg.Fetch.RateLimitRPS))
	}

	fetcher := catalog.Fetcher(retry.New(base, retry.Policy{
		MaxAttempts: a.cfg.Fetch.Retries,
		Delay:       a.cfg.RetryDelay(),
	}, a.logger.Named("fetch")))

	if !a.cfg.Cache.Enabled {
		return fetcher, nil
	}
	var pageCache catalog.PageCache
	switch a.cfg.Cache.Backend {
	case config.CacheRedis:
		r, err := cache.DialRedis(ctx, a.cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis cache init failed: %w", err)
		}
		a.redisCache = r
		pageCache = r
	default:
		pageCache = cache.NewMemory()
	}
	a.logger.Info("page cache enabled",
		zap.String("backend", a.cfg.Cache.Backend),
		zap.Duration("ttl", a.cfg.CacheTTL()),
	)
	return cache.NewFetcher(fetcher, pageCache, a.cfg.CacheTTL(), a.logger.Named("cache")), nil
}

func (a *App) newHeadless() *headlessfetcher.Fetcher {
	a.headless = headlessfetcher.NewChromedp(headlessfetcher.Config{
		UserAgent:         a.cfg.Fetch.UserAgent,
		NavigationTimeout: a.cfg.HeadlessNavTimeout(),
		SettleDelay:       500 * time.Millisecond,
	})
	return a.headless
}

func (a *App) setupStorage(ctx context.Context) (catalog.ProductStore, error) {
	switch a.cfg.Storage.Backend {
	case config.StorageGCS:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client init failed: %w", err)
		}
		a.gcsClient = client
		store, err := gcsstorage.New(client, gcsstorage.Config{
			Bucket: a.cfg.Storage.GCSBucket,
			Object: a.cfg.Storage.GCSObject,
		})
		if err != nil {
			return nil, fmt.Errorf("gcs store init failed: %w", err)
		}
		a.logger.Info("using GCS storage backend", zap.String("location", store.Location()))
		return store, nil
	case config.StoragePostgres:
		store, err := pgstore.New(ctx, pgstore.Config{
			DSN:   a.cfg.Storage.PostgresDSN,
			Table: a.cfg.Storage.PostgresTable,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres store init failed: %w", err)
		}
		a.pgStore = store
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("postgres schema init failed: %w", err)
		}
		a.logger.Info("using postgres storage backend", zap.String("location", store.Location()))
		return store, nil
	case config.StorageMemory:
		a.logger.Warn("using in-memory storage backend; results are lost on exit")
		return memorystorage.New(), nil
	default:
		store, err := localstorage.New(localstorage.Config{Path: a.cfg.Storage.Path})
		if err != nil {
			return nil, fmt.Errorf("local store init failed: %w", err)
		}
		a.logger.Info("using local storage backend", zap.String("location", store.Location()))
		return store, nil
	}
}

func (a *App) setupPublisher(ctx context.Context) (catalog.Publisher, error) {
	if !a.cfg.PublishEnabled() {
		a.logger.Debug("no Pub/Sub topic configured, using in-memory publisher")
		return memorypublisher.New(), nil
	}
	client, err := pubsub.NewClient(ctx, a.cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("pubsub client init failed: %w", err)
	}
	a.pubsubClient = client
	a.pubsubPublisher, err = gcppublisher.New(client, a.cfg.PubSub.Topic)
	if err != nil {
		return nil, fmt.Errorf("pubsub publisher init failed: %w", err)
	}
	a.logger.Info("Pub/Sub publisher initialized",
		zap.String("project", a.cfg.PubSub.ProjectID),
		zap.String("topic", a.cfg.PubSub.Topic),
	)
	return a.pubsubPublisher, nil
}

// Runner returns the scrape runner.
func (a *App) Runner() *scraper.Runner {
	return a.runner
}

// Run performs a single scrape run outside the HTTP API.
func (a *App) Run(ctx context.Context, pages int, proxy string) (scraper.Summary, error) {
	return a.runner.Run(ctx, pages, proxy)
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Store returns the configured product store.
func (a *App) Store() catalog.ProductStore {
	return a.store
}

// Handler builds the HTTP API.
func (a *App) Handler() http.Handler {
	return api.NewServer(a.runner, a.store, api.Options{
		Token:          a.cfg.Auth.Token,
		DefaultPages:   a.cfg.Scraper.DefaultPages,
		MaxPages:       a.cfg.Scraper.MaxPages,
		RequestTimeout: a.cfg.RequestTimeout(),
	}, a.logger.Named("api")).Handler()
}

// Serve listens on the configured port until ctx is canceled, then shuts the
// server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases every client opened by Build.
func (a *App) Close() {
	a.closeInfrastructure()
	if err := a.logger.Sync(); err != nil {
		a.logger.Debug("logger sync failed", zap.Error(err))
	}
	a.logger.Info("shutdown complete")
}

func (a *App) closeInfrastructure() {
	if a.headless != nil {
		a.headless.Close()
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.logger.Warn("redis client close failed", zap.Error(err))
		}
	}
	if a.pubsubPublisher != nil {
		a.pubsubPublisher.Stop()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.logger.Warn("gcs client close failed", zap.Error(err))
		}
	}
	if a.pgStore != nil {
		a.pgStore.Close()
	}
	if a.tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.logger.Warn("tracer provider shutdown failed", zap.Error(err))
		}
	}
}
