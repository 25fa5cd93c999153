package search

import (
	"fmt"
	"path/filepath"

	"github.com/hupe1980/nodefinder/coords"
	"github.com/hupe1980/nodefinder/internal/queue"
	"github.com/hupe1980/nodefinder/internal/results"
	"github.com/hupe1980/nodefinder/model"
	"github.com/hupe1980/nodefinder/persistence"
)

// State is the persistable part of a run.
type State struct {
	Result    *results.Container
	Simplices *queue.Queue[model.Simplex]
	Positions *queue.Queue[[]float64]
}

func newState(cs *coords.System, gapThreshold, distCutoff float64, simplices []model.Simplex) *State {
	return &State{
		Result:    results.New(cs, gapThreshold, distCutoff),
		Simplices: queue.NewTracking(simplices...),
		Positions: queue.NewConsuming[[]float64](),
	}
}

// stateFromDocument rebuilds a state under the given coordinate system and
// acceptance parameters. Simplices that were running when the document was
// written are queued again.
func stateFromDocument(doc *persistence.Document, cs *coords.System, gapThreshold, distCutoff float64) (*State, error) {
	dim := cs.Dim()
	if doc.CoordinateSystem != nil && len(doc.CoordinateSystem.Limits) != dim {
		return nil, &coords.ErrDimensionMismatch{Expected: dim, Actual: len(doc.CoordinateSystem.Limits)}
	}
	for _, r := range doc.MinimizationResults {
		if len(r.Pos) != dim {
			return nil, &coords.ErrDimensionMismatch{Expected: dim, Actual: len(r.Pos)}
		}
	}

	st := &State{
		Result:    results.New(cs, gapThreshold, distCutoff, doc.MinimizationResults...),
		Simplices: queue.NewTracking[model.Simplex](),
		Positions: queue.NewConsuming[[]float64](),
	}

	if doc.SimplexQueue != nil {
		for _, e := range doc.SimplexQueue.Objects {
			s, err := queue.ParseState(e.State)
			if err != nil {
				return nil, err
			}
			if len(e.Simplex) != dim+1 || e.Simplex.Dim() != dim {
				return nil, &coords.ErrDimensionMismatch{Expected: dim, Actual: e.Simplex.Dim()}
			}
			if s == queue.Running {
				s = queue.Queued
			}
			if err := st.Simplices.AddWithState(e.Simplex, s); err != nil {
				return nil, err
			}
		}
	}
	if doc.PositionQueue != nil {
		for _, e := range doc.PositionQueue.Objects {
			s, err := queue.ParseState(e.State)
			if err != nil {
				return nil, err
			}
			if s != queue.Queued {
				continue
			}
			if len(e.Pos) != dim {
				return nil, &coords.ErrDimensionMismatch{Expected: dim, Actual: len(e.Pos)}
			}
			if err := st.Positions.Add(e.Pos); err != nil {
				return nil, err
			}
		}
	}
	return st, nil
}

// CoordinateSystemDocument converts cs to its persisted form.
func CoordinateSystemDocument(cs *coords.System) *persistence.CoordinateSystem {
	limits := cs.Limits()
	out := &persistence.CoordinateSystem{
		Limits:   make([][2]float64, len(limits)),
		Periodic: cs.Periodic(),
	}
	for i, l := range limits {
		out.Limits[i] = [2]float64{l.Lower, l.Upper}
	}
	return out
}

// CoordinateSystemFromDocument restores a coordinate system.
func CoordinateSystemFromDocument(doc *persistence.CoordinateSystem) (*coords.System, error) {
	if doc == nil {
		return nil, persistence.ErrMissingCoordinateData
	}
	limits := make([]coords.Limit, len(doc.Limits))
	for i, l := range doc.Limits {
		limits[i] = coords.Limit{Lower: l[0], Upper: l[1]}
	}
	return coords.New(limits, doc.Periodic)
}

// Document snapshots the state. It must be called from the goroutine that
// mutates the state.
func (s *State) Document() *persistence.Document {
	c := s.Result
	doc := &persistence.Document{
		CoordinateSystem:    CoordinateSystemDocument(c.CoordinateSystem()),
		GapThreshold:        model.Float(c.GapThreshold()),
		DistCutoff:          model.Float(c.DistCutoff()),
		MinimizationResults: c.MinimizationResults(),
		SimplexQueue:        &persistence.SimplexQueue{Objects: []persistence.SimplexEntry{}},
		PositionQueue:       &persistence.PositionQueue{Objects: []persistence.PositionEntry{}},
	}
	for _, e := range s.Simplices.Entries() {
		doc.SimplexQueue.Objects = append(doc.SimplexQueue.Objects,
			persistence.SimplexEntry{Simplex: e.Object, State: e.State.String()})
	}
	for _, e := range s.Positions.Entries() {
		doc.PositionQueue.Objects = append(doc.PositionQueue.Objects,
			persistence.PositionEntry{Pos: e.Object, State: e.State.String()})
	}
	return doc
}

func (s *State) String() string {
	return fmt.Sprintf("State(nodes=%d, rejected=%d, simplices queued=%d running=%d, positions queued=%d)",
		s.Result.NumNodes(), s.Result.NumRejected(),
		s.Simplices.NumQueued(), s.Simplices.NumRunning(), s.Positions.NumQueued())
}

func baseName(path string) string { return filepath.Base(path) }
