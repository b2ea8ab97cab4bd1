package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled toggles metric collection. When false the collector is a
	// no-op and the handler serves an empty registry.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Namespace is the metric name prefix (defaults to "parallax").
	Namespace string `yaml:"namespace" json:"namespace"`

	// Subsystem is the metric subsystem label (defaults to "query").
	Subsystem string `yaml:"subsystem" json:"subsystem"`

	// RequestDurationBuckets are histogram buckets for request latency
	// in seconds.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets" json:"request_duration_buckets"`

	// TokenCountBuckets are histogram buckets for per-response token
	// counts.
	TokenCountBuckets []float64 `yaml:"token_count_buckets" json:"token_count_buckets"`
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:                true,
		Namespace:              "parallax",
		Subsystem:              "query",
		RequestDurationBuckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		TokenCountBuckets:      []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}
}

// Collector owns the Prometheus registry and all metric families.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	request  *requestMetrics
	provider *providerMetrics
	cost     *costMetrics
	stream   *streamMetrics
}

// NewCollector creates a metrics collector. A disabled config returns a
// collector whose record methods do nothing.
func NewCollector(cfg Config) *Collector {
	defaults := DefaultConfig()
	if cfg.Namespace == "" {
		cfg.Namespace = defaults.Namespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = defaults.Subsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = defaults.RequestDurationBuckets
	}
	if len(cfg.TokenCountBuckets) == 0 {
		cfg.TokenCountBuckets = defaults.TokenCountBuckets
	}

	c := &Collector{
		config:   cfg,
		registry: prometheus.NewRegistry(),
	}
	if !cfg.Enabled {
		return c
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.request = newRequestMetrics(cfg, c.registry)
	c.provider = newProviderMetrics(cfg, c.registry)
	c.cost = newCostMetrics(cfg, c.registry)
	c.stream = newStreamMetrics(cfg, c.registry)
	return c
}

// Enabled reports whether metric collection is active.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
