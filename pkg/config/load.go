package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"parallax-hq/parallax/pkg/providers"
)

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "PARALLAX_"

// Load reads configuration from a YAML file, applies defaults and
// environment overrides, and validates the result.
//
// An empty path skips the file and builds the configuration from defaults
// and environment variables alone, which is enough for a quick start with
// just PARALLAX_PROVIDERS_OPENAI_API_KEY set.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies PARALLAX_SECTION_FIELD environment variables on
// top of the file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(envPrefix + "SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if d, ok := envDuration("SERVER_READ_TIMEOUT"); ok {
		cfg.Server.ReadTimeout = d
	}
	if d, ok := envDuration("SERVER_WRITE_TIMEOUT"); ok {
		cfg.Server.WriteTimeout = d
	}
	if d, ok := envDuration("SERVER_REQUEST_TIMEOUT"); ok {
		cfg.Server.RequestTimeout = d
	}
	if d, ok := envDuration("SERVER_SHUTDOWN_TIMEOUT"); ok {
		cfg.Server.ShutdownTimeout = d
	}

	for _, id := range providers.CatalogIDs() {
		applyProviderEnvOverrides(cfg, id)
	}

	if val := os.Getenv(envPrefix + "STORE_BACKEND"); val != "" {
		cfg.Store.Backend = val
	}
	if val := os.Getenv(envPrefix + "STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}

	if b, ok := envBool("USAGE_ENABLED"); ok {
		cfg.Usage.Enabled = b
	}
	if val := os.Getenv(envPrefix + "USAGE_BACKEND"); val != "" {
		cfg.Usage.Backend = val
	}
	if val := os.Getenv(envPrefix + "USAGE_PATH"); val != "" {
		cfg.Usage.Path = val
	}

	if b, ok := envBool("RETENTION_ENABLED"); ok {
		cfg.Retention.Enabled = b
	}
	if val := os.Getenv(envPrefix + "RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retention.Days = i
		}
	}
	if val := os.Getenv(envPrefix + "RETENTION_SCHEDULE"); val != "" {
		cfg.Retention.Schedule = val
	}

	if val := os.Getenv(envPrefix + "LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv(envPrefix + "LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if b, ok := envBool("METRICS_ENABLED"); ok {
		cfg.Telemetry.Metrics.Enabled = b
	}
}

// applyProviderEnvOverrides reads PARALLAX_PROVIDERS_<ID>_* variables for
// one provider.
func applyProviderEnvOverrides(cfg *Config, id string) {
	prefix := fmt.Sprintf("%sPROVIDERS_%s_", envPrefix, strings.ToUpper(id))

	pc, exists := cfg.Providers[id]
	modified := false

	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		pc.APIKey = val
		modified = true
	}
	if val := os.Getenv(prefix + "BASE_URL"); val != "" {
		pc.BaseURL = val
		modified = true
	}
	if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			pc.Timeout = d
			modified = true
		}
	}

	if modified {
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
	} else if exists {
		cfg.Providers[id] = pc
	}
}

func envDuration(name string) (time.Duration, bool) {
	val := os.Getenv(envPrefix + name)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}

func envBool(name string) (bool, bool) {
	val := os.Getenv(envPrefix + name)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}
