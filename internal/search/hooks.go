package search

import (
	"context"
	"time"

	"github.com/hupe1980/nodefinder/model"
)

// MinimizationEvent describes one finished minimization.
type MinimizationEvent struct {
	Initial  model.Simplex
	Result   model.Result
	Accepted bool
	Duration time.Duration
	Err      error
}

// RefinementEvent describes a refinement decision for a position.
type RefinementEvent struct {
	Pos []float64
	// Expanded is false for the acceptance-time check, true when a queued
	// position is turned into simplices.
	Expanded  bool
	Scheduled bool
}

// CheckpointEvent describes a checkpoint write or load.
type CheckpointEvent struct {
	Path     string
	Mirror   bool // written to or read from the blob store
	Bytes    int64
	Results  int
	Duration time.Duration
	Err      error
}

// Hooks receives progress notifications. All methods are called from the
// controller goroutine and must not block.
type Hooks interface {
	OnMinimization(ctx context.Context, ev MinimizationEvent)
	OnNodeFound(ctx context.Context, node model.Result)
	OnRefinement(ctx context.Context, ev RefinementEvent)
	OnCheckpoint(ctx context.Context, ev CheckpointEvent)
	OnLoad(ctx context.Context, ev CheckpointEvent)
}

// NoopHooks ignores every notification.
type NoopHooks struct{}

func (NoopHooks) OnMinimization(context.Context, MinimizationEvent) {}
func (NoopHooks) OnNodeFound(context.Context, model.Result)         {}
func (NoopHooks) OnRefinement(context.Context, RefinementEvent)     {}
func (NoopHooks) OnCheckpoint(context.Context, CheckpointEvent)     {}
func (NoopHooks) OnLoad(context.Context, CheckpointEvent)           {}
