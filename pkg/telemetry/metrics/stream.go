package metrics

import "github.com/prometheus/client_golang/prometheus"

// streamMetrics tracks aggregated streaming sessions.
type streamMetrics struct {
	active prometheus.Gauge
	events *prometheus.CounterVec
}

func newStreamMetrics(cfg Config, reg *prometheus.Registry) *streamMetrics {
	m := &streamMetrics{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "stream",
			Name:      "active_sessions",
			Help:      "Streaming query sessions currently open.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "stream",
			Name:      "events_total",
			Help:      "Stream events emitted by event type.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.active, m.events)
	return m
}

// StreamStarted marks a streaming session as open.
func (c *Collector) StreamStarted() {
	if c.stream == nil {
		return
	}
	c.stream.active.Inc()
}

// StreamEnded marks a streaming session as closed.
func (c *Collector) StreamEnded() {
	if c.stream == nil {
		return
	}
	c.stream.active.Dec()
}

// RecordStreamEvent counts one emitted stream event.
func (c *Collector) RecordStreamEvent(eventType string) {
	if c.stream == nil {
		return
	}
	c.stream.events.WithLabelValues(eventType).Inc()
}
