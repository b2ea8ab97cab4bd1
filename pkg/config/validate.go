package config

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"parallax-hq/parallax/pkg/providers"
)

// Validate checks the configuration for inconsistencies. It is called
// after defaults and environment overrides are applied.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	for id, pc := range cfg.Providers {
		if _, ok := providers.Lookup(id); !ok {
			return fmt.Errorf("providers.%s: unknown provider id", id)
		}
		if pc.Timeout < 0 {
			return fmt.Errorf("providers.%s.timeout must not be negative", id)
		}
	}

	switch cfg.Store.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("store.backend must be \"sqlite\" or \"memory\", got %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "sqlite" && cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty with the sqlite backend")
	}

	switch cfg.Usage.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("usage.backend must be \"sqlite\" or \"memory\", got %q", cfg.Usage.Backend)
	}
	if cfg.Usage.Enabled && cfg.Usage.Backend == "sqlite" && cfg.Usage.Path == "" {
		return fmt.Errorf("usage.path must not be empty with the sqlite backend")
	}

	if cfg.Retention.Enabled {
		if cfg.Retention.Days < 0 {
			return fmt.Errorf("retention.days must not be negative")
		}
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			return fmt.Errorf("retention.schedule is not a valid cron expression: %w", err)
		}
	}

	for i, key := range cfg.Auth.Keys {
		if key == nil || key.Key == "" {
			return fmt.Errorf("auth.keys[%d]: key must not be empty", i)
		}
		if key.UserID == "" {
			return fmt.Errorf("auth.keys[%d]: user_id must not be empty", i)
		}
	}

	return nil
}
