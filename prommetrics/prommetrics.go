// Package prommetrics exports search metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements nodefinder.MetricsCollector with Prometheus metrics.
type Collector struct {
	minimizationLatency *prometheus.HistogramVec
	nodes               prometheus.Counter
	refinements         *prometheus.CounterVec
	checkpointLatency   *prometheus.HistogramVec
	checkpointBytes     prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics with reg. A nil
// reg uses the default registerer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		minimizationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nodefinder_minimization_duration_seconds",
			Help:    "Duration of local minimizations",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"status"}),
		nodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nodefinder_nodes_total",
			Help: "Total nodes accepted",
		}),
		refinements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nodefinder_refinements_total",
			Help: "Total refinement decisions",
		}, []string{"decision"}),
		checkpointLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nodefinder_checkpoint_duration_seconds",
			Help:    "Duration of checkpoint writes",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		checkpointBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nodefinder_checkpoint_size_bytes",
			Help: "Size of the last checkpoint written",
		}),
	}

	for _, m := range []prometheus.Collector{
		c.minimizationLatency,
		c.nodes,
		c.refinements,
		c.checkpointLatency,
		c.checkpointBytes,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordMinimization records one minimization. The status label is
// "accepted", "rejected" or "error".
func (c *Collector) RecordMinimization(d time.Duration, accepted bool, err error) {
	status := "rejected"
	switch {
	case err != nil:
		status = "error"
	case accepted:
		status = "accepted"
		c.nodes.Inc()
	}
	c.minimizationLatency.WithLabelValues(status).Observe(d.Seconds())
}

// RecordRefinement records a refinement decision.
func (c *Collector) RecordRefinement(scheduled bool) {
	decision := "discarded"
	if scheduled {
		decision = "scheduled"
	}
	c.refinements.WithLabelValues(decision).Inc()
}

// RecordCheckpoint records a checkpoint write.
func (c *Collector) RecordCheckpoint(d time.Duration, bytes int64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	} else {
		c.checkpointBytes.Set(float64(bytes))
	}
	c.checkpointLatency.WithLabelValues(status).Observe(d.Seconds())
}
