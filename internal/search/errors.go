package search

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadWithInitialState is returned when an explicit initial state is
	// combined with loading a checkpoint.
	ErrLoadWithInitialState = errors.New("search: cannot set the initial state explicitly and load a checkpoint")

	// ErrLoadWithoutSource is returned when loading is requested without a
	// save file or checkpoint store to load from.
	ErrLoadWithoutSource = errors.New("search: load requires a save file or checkpoint store")

	// ErrInvalidParallelism is returned for a non-positive parallelism limit.
	ErrInvalidParallelism = errors.New("search: number of parallel minimizations must be positive")

	// ErrInvalidMeshSize is returned for a negative mesh size.
	ErrInvalidMeshSize = errors.New("search: mesh sizes must not be negative")

	// ErrInvalidFeatureSize is returned for a negative feature size.
	ErrInvalidFeatureSize = errors.New("search: feature size must not be negative")

	// ErrNoObjective is returned when the controller is created without an objective.
	ErrNoObjective = errors.New("search: objective function is required")
)

// DimensionMismatchError indicates that limits and mesh sizes disagree in
// dimensionality.
type DimensionMismatchError struct {
	Limits             int
	InitialMeshSize    int
	RefinementMeshSize int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("search: inconsistent dimensions given: limits: %d, initial mesh size: %d, refinement mesh size: %d",
		e.Limits, e.InitialMeshSize, e.RefinementMeshSize)
}

// EvaluationError is returned when the objective fails at a position. It
// aborts the run.
type EvaluationError struct {
	Pos []float64
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("search: objective failed at %v: %v", e.Pos, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// CheckpointError is returned when a checkpoint cannot be written or read.
type CheckpointError struct {
	Path string
	Err  error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("search: checkpoint %s: %v", e.Path, e.Err)
}

func (e *CheckpointError) Unwrap() error { return e.Err }
