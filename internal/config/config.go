// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Fetch modes.
const (
	FetchModeHTTP     = "http"
	FetchModeHeadless = "headless"
	// FetchModeAuto probes over HTTP and renders headlessly only when the
	// probe looks like a client-rendered shell.
	FetchModeAuto = "auto"
)

// Storage backends.
const (
	StorageLocal    = "local"
	StorageGCS      = "gcs"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Extract ExtractConfig `mapstructure:"extract"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Storage StorageConfig `mapstructure:"storage"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// AuthConfig holds the static bearer token guarding the API.
type AuthConfig struct {
	Token string `mapstructure:"token"`
}

// ScraperConfig describes the listing to scrape.
type ScraperConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	DefaultPages int    `mapstructure:"default_pages"`
	MaxPages     int    `mapstructure:"max_pages"`
}

// FetchConfig configures page retrieval and retry behavior.
type FetchConfig struct {
	Mode                      string `mapstructure:"mode"`
	UserAgent                 string `mapstructure:"user_agent"`
	Retries                   int    `mapstructure:"retries"`
	RetryDelayMs              int    `mapstructure:"retry_delay_ms"`
	TimeoutSeconds            int    `mapstructure:"timeout_seconds"`
	HeadlessNavTimeoutSeconds int    `mapstructure:"headless_nav_timeout_seconds"`
	PromoteBodyThreshold      int    `mapstructure:"promote_body_threshold"`
	// RateLimitRPS caps requests per second per host; 0 disables pacing.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// ExtractConfig tunes product validation.
type ExtractConfig struct {
	AllowZeroPrice bool `mapstructure:"allow_zero_price"`
}

// CacheConfig controls the optional page cache.
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Backend    string `mapstructure:"backend"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
	RedisURL   string `mapstructure:"redis_url"`
}

// StorageConfig selects where the product document is persisted.
type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	Path          string `mapstructure:"path"`
	GCSBucket     string `mapstructure:"gcs_bucket"`
	GCSObject     string `mapstructure:"gcs_object"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	PostgresTable string `mapstructure:"postgres_table"`
}

// PubSubConfig holds metadata for completion notifications. Publishing is
// enabled when both fields are set.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// bindLegacyEnv accepts the unprefixed variable names older deployments use.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("auth.token", "SCRAPER_AUTH_TOKEN", "API_TOKEN")
	_ = v.BindEnv("scraper.base_url", "SCRAPER_SCRAPER_BASE_URL", "BASE_URL")
	_ = v.BindEnv("scraper.default_pages", "SCRAPER_SCRAPER_DEFAULT_PAGES", "DEFAULT_PAGES")
	_ = v.BindEnv("cache.ttl_seconds", "SCRAPER_CACHE_TTL_SECONDS", "CACHE_TTL")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.request_timeout_seconds", 600)
	v.SetDefault("auth.token", "")
	v.SetDefault("scraper.base_url", "https://dentalstall.com/shop/")
	v.SetDefault("scraper.default_pages", 5)
	v.SetDefault("scraper.max_pages", 100)
	v.SetDefault("fetch.mode", FetchModeHTTP)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0")
	v.SetDefault("fetch.retries", 3)
	v.SetDefault("fetch.retry_delay_ms", 5000)
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.headless_nav_timeout_seconds", 45)
	v.SetDefault("fetch.promote_body_threshold", 2048)
	v.SetDefault("fetch.rate_limit_rps", 0)
	v.SetDefault("fetch.rate_limit_burst", 1)
	v.SetDefault("extract.allow_zero_price", false)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("storage.backend", StorageLocal)
	v.SetDefault("storage.path", "scraped_data.json")
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.gcs_object", "scraped_data.json")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.postgres_table", "scraped_products")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if err := validateBaseURL(c.Scraper.BaseURL); err != nil {
		return err
	}
	if c.Scraper.MaxPages <= 0 {
		return fmt.Errorf("scraper.max_pages must be > 0")
	}
	if c.Scraper.DefaultPages <= 0 || c.Scraper.DefaultPages > c.Scraper.MaxPages {
		return fmt.Errorf("scraper.default_pages must be between 1 and scraper.max_pages")
	}
	switch c.Fetch.Mode {
	case FetchModeHTTP, FetchModeHeadless, FetchModeAuto:
	default:
		return fmt.Errorf("fetch.mode must be one of %q, %q, %q", FetchModeHTTP, FetchModeHeadless, FetchModeAuto)
	}
	if c.Fetch.RateLimitRPS < 0 {
		return fmt.Errorf("fetch.rate_limit_rps must be >= 0")
	}
	if c.Fetch.Retries <= 0 {
		return fmt.Errorf("fetch.retries must be > 0")
	}
	if c.Fetch.RetryDelayMs < 0 {
		return fmt.Errorf("fetch.retry_delay_ms must be >= 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case CacheMemory:
		case CacheRedis:
			if c.Cache.RedisURL == "" {
				return fmt.Errorf("cache.redis_url must be set when cache.backend is redis")
			}
		default:
			return fmt.Errorf("cache.backend must be %q or %q", CacheMemory, CacheRedis)
		}
		if c.Cache.TTLSeconds <= 0 {
			return fmt.Errorf("cache.ttl_seconds must be > 0 when the cache is enabled")
		}
	}
	switch c.Storage.Backend {
	case StorageLocal:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path must be set for the local backend")
		}
	case StorageGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set for the gcs backend")
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn must be set for the postgres backend")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	if (c.PubSub.ProjectID == "") != (c.PubSub.Topic == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic must be set together")
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("scraper.base_url must be an absolute http(s) URL")
	}
	return nil
}

// PublishEnabled reports whether completion events should be sent.
func (c Config) PublishEnabled() bool {
	return c.PubSub.ProjectID != "" && c.PubSub.Topic != ""
}

// RetryDelay returns the fixed wait between fetch attempts.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Fetch.RetryDelayMs) * time.Millisecond
}

// FetchTimeout bounds a single fetch attempt.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// HeadlessNavTimeout bounds one headless navigation.
func (c Config) HeadlessNavTimeout() time.Duration {
	return time.Duration(c.Fetch.HeadlessNavTimeoutSeconds) * time.Second
}

// CacheTTL is how long a cached page stays fresh.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// RequestTimeout bounds one API request, scrape included.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
