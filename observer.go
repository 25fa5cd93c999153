package nodefinder

import (
	"context"

	"github.com/hupe1980/nodefinder/internal/search"
	"github.com/hupe1980/nodefinder/model"
)

// observer forwards controller events to the logger and metrics collector.
type observer struct {
	logger  *Logger
	metrics MetricsCollector
	nodes   int
}

var _ search.Hooks = (*observer)(nil)

func (o *observer) OnMinimization(ctx context.Context, ev search.MinimizationEvent) {
	o.metrics.RecordMinimization(ev.Duration, ev.Accepted, ev.Err)
	if ev.Err != nil {
		o.logger.ErrorContext(ctx, "minimization failed", "error", ev.Err)
		return
	}
	o.logger.DebugContext(ctx, "minimization finished",
		"pos", ev.Result.Pos,
		"value", ev.Result.Value,
		"success", ev.Result.Success,
		"accepted", ev.Accepted,
		"duration", ev.Duration,
	)
}

func (o *observer) OnNodeFound(ctx context.Context, node model.Result) {
	o.nodes++
	o.logger.LogNodeFound(ctx, node, o.nodes)
}

func (o *observer) OnRefinement(ctx context.Context, ev search.RefinementEvent) {
	o.metrics.RecordRefinement(ev.Scheduled)
	o.logger.LogRefinement(ctx, ev.Pos, ev.Expanded, ev.Scheduled)
}

func (o *observer) OnCheckpoint(ctx context.Context, ev search.CheckpointEvent) {
	o.metrics.RecordCheckpoint(ev.Duration, ev.Bytes, ev.Err)
	o.logger.LogCheckpoint(ctx, ev.Path, ev.Mirror, ev.Bytes, ev.Results, ev.Err)
}

func (o *observer) OnLoad(ctx context.Context, ev search.CheckpointEvent) {
	o.logger.LogLoad(ctx, ev.Path, ev.Mirror, ev.Results, ev.Err)
}
