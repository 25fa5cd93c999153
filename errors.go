package nodefinder

import (
	"errors"

	"github.com/hupe1980/nodefinder/internal/search"
)

var (
	// ErrLoadWithInitialState is returned when WithInitialState is combined
	// with WithLoad.
	ErrLoadWithInitialState = search.ErrLoadWithInitialState

	// ErrLoadWithoutSource is returned when WithLoad is given without a save
	// file or checkpoint store.
	ErrLoadWithoutSource = search.ErrLoadWithoutSource

	// ErrInvalidParallelism is returned for a non-positive parallelism limit.
	ErrInvalidParallelism = search.ErrInvalidParallelism

	// ErrInvalidMeshSize is returned for a negative mesh size.
	ErrInvalidMeshSize = search.ErrInvalidMeshSize

	// ErrInvalidFeatureSize is returned for a negative feature size.
	ErrInvalidFeatureSize = search.ErrInvalidFeatureSize

	// ErrNoObjective is returned when Run is called without an objective.
	ErrNoObjective = search.ErrNoObjective

	// ErrInvalidLimits is returned when a per-axis option cannot be expanded
	// to the domain dimension.
	ErrInvalidLimits = errors.New("nodefinder: per-axis option does not match the number of limits")
)

// ErrDimensionMismatch indicates that limits and mesh sizes disagree in
// dimensionality.
type ErrDimensionMismatch = search.DimensionMismatchError

// EvaluationError is returned when the objective fails. The first failure
// aborts the run; the checkpoint written up to that point stays resumable.
type EvaluationError = search.EvaluationError

// CheckpointError is returned when a checkpoint cannot be written or read.
type CheckpointError = search.CheckpointError
