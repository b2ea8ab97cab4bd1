package config

import (
	"time"

	"parallax-hq/parallax/pkg/api/middleware"
	"parallax-hq/parallax/pkg/pricing"
	"parallax-hq/parallax/pkg/telemetry/metrics"
)

// Config is the root configuration for the parallax server.
type Config struct {
	// Server configures the HTTP listener
	Server ServerConfig `yaml:"server"`

	// Providers configures the upstream provider adapters, keyed by
	// provider id (openai, anthropic, perplexity, gemini). Providers
	// without an API key are skipped at startup.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Pricing overlays the built-in pricing table, keyed by model id
	Pricing map[string]pricing.Entry `yaml:"pricing"`

	// Store configures conversation persistence
	Store StoreConfig `yaml:"store"`

	// Usage configures usage accounting
	Usage UsageConfig `yaml:"usage"`

	// Retention configures conversation pruning
	Retention RetentionConfig `yaml:"retention"`

	// Auth configures API key authentication. Empty keys disable auth.
	Auth AuthConfig `yaml:"auth"`

	// Telemetry configures logging and metrics
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// ListenAddress is the host:port to bind (default ":8080")
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading the request head and body
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. Must be generous enough
	// for streaming responses.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive connections
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// RequestTimeout bounds non-streaming request handling
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes caps request header size
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS configures cross-origin access
	CORS middleware.CORSConfig `yaml:"cors"`
}

// ProviderConfig configures one provider adapter.
type ProviderConfig struct {
	// APIKey is the provider credential. Empty disables the provider.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default endpoint
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each upstream call
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the connection pool size
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the per-host connection pool size
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle connections are kept
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// StoreConfig configures conversation persistence.
type StoreConfig struct {
	// Backend selects the store implementation: "sqlite" or "memory"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file (sqlite backend only)
	Path string `yaml:"path"`

	// BusyTimeout is the SQLite busy timeout
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// UsageConfig configures usage accounting.
type UsageConfig struct {
	// Enabled toggles usage accounting
	Enabled bool `yaml:"enabled"`

	// Backend selects the tracker implementation: "sqlite" or "memory"
	Backend string `yaml:"backend"`

	// Path is the usage ledger database file (sqlite backend only)
	Path string `yaml:"path"`
}

// RetentionConfig configures conversation pruning.
type RetentionConfig struct {
	// Enabled toggles scheduled pruning
	Enabled bool `yaml:"enabled"`

	// Days is how long conversations are retained. 0 keeps them forever.
	Days int `yaml:"days"`

	// Schedule is a cron expression for the pruning job
	Schedule string `yaml:"schedule"`
}

// AuthConfig configures API key authentication.
type AuthConfig struct {
	// Keys lists the accepted API keys and their identities
	Keys []*middleware.APIKeyInfo `yaml:"keys"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig  `yaml:"logging"`
	Metrics metrics.Config `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string `yaml:"level"`

	// Format is the output format ("json", "text")
	Format string `yaml:"format"`

	// AddSource includes file and line in log records
	AddSource bool `yaml:"add_source"`
}
