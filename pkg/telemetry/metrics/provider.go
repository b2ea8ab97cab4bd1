package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// providerMetrics tracks upstream provider calls.
type providerMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tokens   *prometheus.HistogramVec
}

func newProviderMetrics(cfg Config, reg *prometheus.Registry) *providerMetrics {
	m := &providerMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total provider calls by provider, model and outcome.",
		}, []string{"provider", "model", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Total provider errors by provider and error type.",
		}, []string{"provider", "error_type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Provider call latency in seconds.",
			Buckets:   cfg.RequestDurationBuckets,
		}, []string{"provider", "model"}),
		tokens: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "provider",
			Name:      "response_tokens",
			Help:      "Token counts per provider response.",
			Buckets:   cfg.TokenCountBuckets,
		}, []string{"provider", "model"}),
	}
	reg.MustRegister(m.requests, m.errors, m.duration, m.tokens)
	return m
}

// RecordProviderCall records the outcome of one provider call.
func (c *Collector) RecordProviderCall(provider, model string, duration time.Duration, tokens int, errorType string) {
	if c.provider == nil {
		return
	}
	outcome := "success"
	if errorType != "" {
		outcome = "error"
		c.provider.errors.WithLabelValues(provider, errorType).Inc()
	}
	c.provider.requests.WithLabelValues(provider, model, outcome).Inc()
	c.provider.duration.WithLabelValues(provider, model).Observe(duration.Seconds())
	if tokens > 0 {
		c.provider.tokens.WithLabelValues(provider, model).Observe(float64(tokens))
	}
}
