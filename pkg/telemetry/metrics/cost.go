package metrics

import "github.com/prometheus/client_golang/prometheus"

// costMetrics tracks estimated spend.
type costMetrics struct {
	total *prometheus.CounterVec
}

func newCostMetrics(cfg Config, reg *prometheus.Registry) *costMetrics {
	m := &costMetrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "cost",
			Name:      "usd_total",
			Help:      "Estimated cumulative cost in USD by provider and model.",
		}, []string{"provider", "model"}),
	}
	reg.MustRegister(m.total)
	return m
}

// RecordCost adds an estimated cost sample for one provider response.
func (c *Collector) RecordCost(provider, model string, usd float64) {
	if c.cost == nil || usd <= 0 {
		return
	}
	c.cost.total.WithLabelValues(provider, model).Add(usd)
}
