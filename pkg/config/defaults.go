package config

import (
	"time"

	"parallax-hq/parallax/pkg/providers"
)

// Default values applied to unset fields.
const (
	DefaultListenAddress   = ":8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 10 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultRequestTimeout  = 5 * time.Minute
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	DefaultProviderTimeout     = 2 * time.Minute
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second

	DefaultStoreBackend = "sqlite"
	DefaultStorePath    = "parallax.db"
	DefaultBusyTimeout  = 5 * time.Second

	DefaultUsageBackend = "sqlite"
	DefaultUsagePath    = "parallax-usage.db"

	DefaultRetentionDays     = 90
	DefaultRetentionSchedule = "0 3 * * *"
)

// ApplyDefaults fills unset fields with default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for id, pc := range cfg.Providers {
		if pc.Timeout == 0 {
			pc.Timeout = DefaultProviderTimeout
		}
		if pc.MaxIdleConns == 0 {
			pc.MaxIdleConns = DefaultMaxIdleConns
		}
		if pc.MaxIdleConnsPerHost == 0 {
			pc.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
		}
		if pc.IdleConnTimeout == 0 {
			pc.IdleConnTimeout = DefaultIdleConnTimeout
		}
		cfg.Providers[id] = pc
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultBusyTimeout
	}

	if cfg.Usage.Backend == "" {
		cfg.Usage.Backend = DefaultUsageBackend
	}
	if cfg.Usage.Path == "" {
		cfg.Usage.Path = DefaultUsagePath
	}

	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultRetentionDays
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}
}

// AdapterConfigs converts the provider section into adapter configs, keyed
// by provider id. Providers without an API key are omitted.
func (c *Config) AdapterConfigs() map[string]providers.AdapterConfig {
	out := make(map[string]providers.AdapterConfig, len(c.Providers))
	for id, pc := range c.Providers {
		if pc.APIKey == "" {
			continue
		}
		out[id] = providers.AdapterConfig{
			ID:                  id,
			BaseURL:             pc.BaseURL,
			APIKey:              pc.APIKey,
			Timeout:             pc.Timeout,
			MaxIdleConns:        pc.MaxIdleConns,
			MaxIdleConnsPerHost: pc.MaxIdleConnsPerHost,
			IdleConnTimeout:     pc.IdleConnTimeout,
		}
	}
	return out
}
