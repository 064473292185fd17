package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Catalog   CatalogConfig
	Ingest    IngestConfig
	Fetch     FetchConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CatalogConfig locates the built-in component descriptor catalog.
// URL wins over Path when both are set.
type CatalogConfig struct {
	Path      string `envconfig:"CATALOG_PATH" default:"unchive/simple_components.json"`
	URL       string `envconfig:"CATALOG_URL"`
	Namespace string `envconfig:"CATALOG_NAMESPACE" default:"com.google.appinventor.components.runtime"`
}

// IngestConfig holds archive ingestion limits.
type IngestConfig struct {
	Workers         int   `envconfig:"INGEST_WORKERS" default:"8"`
	MaxArchiveBytes int64 `envconfig:"INGEST_MAX_ARCHIVE_BYTES" default:"67108864"`
	SchemeHeader    int   `envconfig:"INGEST_SCHEME_HEADER" default:"9"`
	SchemeFooter    int   `envconfig:"INGEST_SCHEME_FOOTER" default:"3"`
	MaxProjects     int   `envconfig:"INGEST_MAX_PROJECTS" default:"100"`

	// SeedDir holds archives the server ingests on startup
	SeedDir string `envconfig:"INGEST_SEED_DIR"`
}

// FetchConfig holds remote fetch settings for archives and the catalog.
type FetchConfig struct {
	Timeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	Retries   int           `envconfig:"FETCH_RETRIES" default:"3"`
	RPS       float64       `envconfig:"FETCH_RPS" default:"0"`
	UserAgent string        `envconfig:"FETCH_USER_AGENT" default:"unchive/1.0"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("INGEST_WORKERS must be positive, got %d", c.Ingest.Workers)
	}
	if c.Ingest.SchemeHeader < 0 || c.Ingest.SchemeFooter < 0 {
		return fmt.Errorf("scheme framing lengths must not be negative")
	}
	if c.Ingest.MaxArchiveBytes <= 0 {
		return fmt.Errorf("INGEST_MAX_ARCHIVE_BYTES must be positive")
	}
	if c.Catalog.Path == "" && c.Catalog.URL == "" {
		return fmt.Errorf("one of CATALOG_PATH or CATALOG_URL is required")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
		Catalog: CatalogConfig{
			Path:      "unchive/simple_components.json",
			Namespace: "com.google.appinventor.components.runtime",
		},
		Ingest: IngestConfig{
			Workers:         8,
			MaxArchiveBytes: 64 << 20,
			SchemeHeader:    9,
			SchemeFooter:    3,
			MaxProjects:     100,
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			Retries:   3,
			RPS:       0,
			UserAgent: "unchive/1.0",
		},
	}
}
