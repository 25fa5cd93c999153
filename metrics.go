package nodefinder

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// prommetrics provides a Prometheus implementation.
//
// Methods are called from the search loop and must not block.
type MetricsCollector interface {
	// RecordMinimization is called after each local minimization.
	// accepted reports whether the result became a node, err is the
	// objective error that aborted the minimization, if any.
	RecordMinimization(duration time.Duration, accepted bool, err error)

	// RecordRefinement is called for each refinement decision.
	RecordRefinement(scheduled bool)

	// RecordCheckpoint is called after each checkpoint write, including
	// writes to the checkpoint store.
	RecordCheckpoint(duration time.Duration, bytes int64, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMinimization(time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordRefinement(bool)                         {}
func (NoopMetricsCollector) RecordCheckpoint(time.Duration, int64, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	MinimizationCount      atomic.Int64
	MinimizationErrors     atomic.Int64
	MinimizationTotalNanos atomic.Int64
	NodesAccepted          atomic.Int64
	RefinementsScheduled   atomic.Int64
	RefinementsDiscarded   atomic.Int64
	CheckpointCount        atomic.Int64
	CheckpointErrors       atomic.Int64
	CheckpointBytes        atomic.Int64
}

// RecordMinimization implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMinimization(duration time.Duration, accepted bool, err error) {
	b.MinimizationCount.Add(1)
	b.MinimizationTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MinimizationErrors.Add(1)
	}
	if accepted {
		b.NodesAccepted.Add(1)
	}
}

// RecordRefinement implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRefinement(scheduled bool) {
	if scheduled {
		b.RefinementsScheduled.Add(1)
	} else {
		b.RefinementsDiscarded.Add(1)
	}
}

// RecordCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckpoint(_ time.Duration, bytes int64, err error) {
	b.CheckpointCount.Add(1)
	if err != nil {
		b.CheckpointErrors.Add(1)
		return
	}
	b.CheckpointBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		MinimizationCount:    b.MinimizationCount.Load(),
		MinimizationErrors:   b.MinimizationErrors.Load(),
		MinimizationAvgNanos: b.getAvgMinimizationNanos(),
		NodesAccepted:        b.NodesAccepted.Load(),
		RefinementsScheduled: b.RefinementsScheduled.Load(),
		RefinementsDiscarded: b.RefinementsDiscarded.Load(),
		CheckpointCount:      b.CheckpointCount.Load(),
		CheckpointErrors:     b.CheckpointErrors.Load(),
		CheckpointBytes:      b.CheckpointBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgMinimizationNanos() int64 {
	count := b.MinimizationCount.Load()
	if count == 0 {
		return 0
	}
	return b.MinimizationTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	MinimizationCount    int64
	MinimizationErrors   int64
	MinimizationAvgNanos int64
	NodesAccepted        int64
	RefinementsScheduled int64
	RefinementsDiscarded int64
	CheckpointCount      int64
	CheckpointErrors     int64
	CheckpointBytes      int64
}
