package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "https://dentalstall.com/shop/", cfg.Scraper.BaseURL)
	assert.Equal(t, 5, cfg.Scraper.DefaultPages)
	assert.Equal(t, FetchModeHTTP, cfg.Fetch.Mode)
	assert.Equal(t, "Mozilla/5.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 3, cfg.Fetch.Retries)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay())
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 2048, cfg.Fetch.PromoteBodyThreshold)
	assert.Zero(t, cfg.Fetch.RateLimitRPS)
	assert.Equal(t, 1, cfg.Fetch.RateLimitBurst)
	assert.False(t, cfg.Extract.AllowZeroPrice)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, "scraped_data.json", cfg.Storage.Path)
	assert.False(t, cfg.PublishEnabled())
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  request_timeout_seconds: 120
auth:
  token: secret
scraper:
  base_url: https://shop.example.com/catalog
  default_pages: 2
  max_pages: 10
fetch:
  mode: headless
  user_agent: test-agent
  retries: 5
  retry_delay_ms: 250
  timeout_seconds: 30
  headless_nav_timeout_seconds: 20
extract:
  allow_zero_price: true
cache:
  enabled: true
  backend: redis
  ttl_seconds: 300
  redis_url: redis://cache:6379/1
storage:
  backend: gcs
  gcs_bucket: bucket
  gcs_object: out/products.json
pubsub:
  project_id: proj
  topic: scrapes
logging:
  development: false
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout())
	assert.Equal(t, "secret", cfg.Auth.Token)
	assert.Equal(t, "https://shop.example.com/catalog", cfg.Scraper.BaseURL)
	assert.Equal(t, 2, cfg.Scraper.DefaultPages)
	assert.Equal(t, FetchModeHeadless, cfg.Fetch.Mode)
	assert.Equal(t, 5, cfg.Fetch.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay())
	assert.Equal(t, 20*time.Second, cfg.HeadlessNavTimeout())
	assert.True(t, cfg.Extract.AllowZeroPrice)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, StorageGCS, cfg.Storage.Backend)
	assert.Equal(t, "out/products.json", cfg.Storage.GCSObject)
	assert.True(t, cfg.PublishEnabled())
	assert.False(t, cfg.Logging.Development)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SCRAPER_SERVER_PORT", "9191")
	t.Setenv("SCRAPER_STORAGE_PATH", "/tmp/out.json")
	t.Setenv("API_TOKEN", "legacy-token")
	t.Setenv("DEFAULT_PAGES", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "/tmp/out.json", cfg.Storage.Path)
	assert.Equal(t, "legacy-token", cfg.Auth.Token)
	assert.Equal(t, 3, cfg.Scraper.DefaultPages)
}

func TestPrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("SCRAPER_AUTH_TOKEN", "new-token")
	t.Setenv("API_TOKEN", "legacy-token")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "new-token", cfg.Auth.Token)
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"invalid request timeout", func(c *Config) { c.Server.RequestTimeoutSeconds = 0 }, "server.request_timeout_seconds"},
		{"relative base url", func(c *Config) { c.Scraper.BaseURL = "/shop/" }, "scraper.base_url"},
		{"ftp base url", func(c *Config) { c.Scraper.BaseURL = "ftp://shop.example.com/" }, "scraper.base_url"},
		{"default above max", func(c *Config) { c.Scraper.DefaultPages = 500 }, "scraper.default_pages"},
		{"zero max pages", func(c *Config) { c.Scraper.MaxPages = 0 }, "scraper.max_pages"},
		{"unknown fetch mode", func(c *Config) { c.Fetch.Mode = "curl" }, "fetch.mode"},
		{"negative rate limit", func(c *Config) { c.Fetch.RateLimitRPS = -1 }, "fetch.rate_limit_rps"},
		{"zero retries", func(c *Config) { c.Fetch.Retries = 0 }, "fetch.retries"},
		{"negative delay", func(c *Config) { c.Fetch.RetryDelayMs = -1 }, "fetch.retry_delay_ms"},
		{"zero fetch timeout", func(c *Config) { c.Fetch.TimeoutSeconds = 0 }, "fetch.timeout_seconds"},
		{"unknown cache backend", func(c *Config) { c.Cache.Enabled = true; c.Cache.Backend = "disk" }, "cache.backend"},
		{"redis without url", func(c *Config) {
			c.Cache.Enabled = true
			c.Cache.Backend = CacheRedis
			c.Cache.RedisURL = ""
		}, "cache.redis_url"},
		{"cache without ttl", func(c *Config) { c.Cache.Enabled = true; c.Cache.TTLSeconds = 0 }, "cache.ttl_seconds"},
		{"gcs without bucket", func(c *Config) { c.Storage.Backend = StorageGCS }, "storage.gcs_bucket"},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = StoragePostgres }, "storage.postgres_dsn"},
		{"local without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "s3" }, "storage.backend"},
		{"half pubsub", func(c *Config) { c.PubSub.ProjectID = "proj" }, "pubsub"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "error %q should mention %q", err, tt.want)
		})
	}
}
