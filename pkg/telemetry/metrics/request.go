package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// requestMetrics tracks inbound HTTP traffic.
type requestMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func newRequestMetrics(cfg Config, reg *prometheus.Registry) *requestMetrics {
	m := &requestMetrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   cfg.RequestDurationBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}
	reg.MustRegister(m.total, m.duration, m.inFlight)
	return m
}

// RecordHTTPRequest records a completed HTTP request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if c.request == nil {
		return
	}
	c.request.total.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.request.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RequestStarted marks an HTTP request as in flight.
func (c *Collector) RequestStarted() {
	if c.request == nil {
		return
	}
	c.request.inFlight.Inc()
}

// RequestFinished marks an HTTP request as no longer in flight.
func (c *Collector) RequestFinished() {
	if c.request == nil {
		return
	}
	c.request.inFlight.Dec()
}
