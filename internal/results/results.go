// Package results owns the minimization results of a search and routes each
// of them to either the accepted-node index or the rejected list.
package results

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/hupe1980/nodefinder/coords"
	"github.com/hupe1980/nodefinder/internal/celllist"
	"github.com/hupe1980/nodefinder/model"
)

// Container stores minimization results. Accepted results are indexed by a
// cell list holding handles into the container's own record arena.
//
// A Container has a single writer (the search controller) but may be read
// concurrently, e.g. by the repulsive bias during objective evaluations.
type Container struct {
	cs           *coords.System
	gapThreshold float64
	distCutoff   float64

	mu       sync.RWMutex
	records  []model.Result
	accepted []int
	rejected []int
	nodes    *celllist.CellList
}

// New creates a container and ingests the given results in order.
func New(cs *coords.System, gapThreshold, distCutoff float64, results ...model.Result) *Container {
	c := &Container{
		cs:           cs,
		gapThreshold: gapThreshold,
		distCutoff:   distCutoff,
		nodes:        celllist.New(celllist.NumCellsFor(cs.Size(), distCutoff)),
	}
	for _, r := range results {
		c.Add(r)
	}
	return c
}

// CoordinateSystem returns the coordinate system of the container.
func (c *Container) CoordinateSystem() *coords.System { return c.cs }

// GapThreshold returns the acceptance cutoff on the objective value.
func (c *Container) GapThreshold() float64 { return c.gapThreshold }

// DistCutoff returns the separation below which nodes are redundant.
func (c *Container) DistCutoff() float64 { return c.distCutoff }

// NumCells returns the grid resolution of the node index.
func (c *Container) NumCells() []int { return c.nodes.NumCells() }

// Add normalizes res and stores it. A result is accepted iff it succeeded
// and its value does not exceed the gap threshold. The stored (normalized)
// record is returned together with the routing decision.
func (c *Container) Add(res model.Result) (model.Result, bool) {
	if len(res.Pos) != c.cs.Dim() {
		panic(fmt.Sprintf("results: result has %d dimensions, domain has %d", len(res.Pos), c.cs.Dim()))
	}
	stored := res.WithPos(c.cs.NormalizePosition(res.Pos))

	c.mu.Lock()
	defer c.mu.Unlock()

	handle := len(c.records)
	c.records = append(c.records, stored)
	if !stored.Success || stored.Value > c.gapThreshold {
		c.rejected = append(c.rejected, handle)
		return stored, false
	}
	c.accepted = append(c.accepted, handle)
	c.nodes.Add(c.cs.Frac(stored.Pos), handle)
	return stored, true
}

// Nodes returns the accepted results in ingestion order.
func (c *Container) Nodes() []model.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collect(c.accepted)
}

// Rejected returns the rejected results in ingestion order.
func (c *Container) Rejected() []model.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collect(c.rejected)
}

// MinimizationResults returns the accepted results followed by the rejected ones.
func (c *Container) MinimizationResults() []model.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append(c.collect(c.accepted), c.collect(c.rejected)...)
}

// NumNodes returns the number of accepted results.
func (c *Container) NumNodes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.accepted)
}

// NumRejected returns the number of rejected results.
func (c *Container) NumRejected() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rejected)
}

// VisitNodePositions calls fn with the position of every accepted result.
// fn must not retain or modify pos, and must not call back into c for writing.
func (c *Container) VisitNodePositions(fn func(pos []float64)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, h := range c.accepted {
		fn(c.records[h].Pos)
	}
}

// NeighbourDistances lazily yields the distance from pos to every accepted
// result in the cell neighborhood of pos. Results located exactly at pos are
// skipped, so a node never counts as its own neighbor.
func (c *Container) NeighbourDistances(pos []float64) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		for h := range c.nodes.Neighbours(c.cs.Frac(pos), c.cs.Periodic()) {
			cand := c.records[h].Pos
			if slices.Equal(cand, pos) {
				continue
			}
			if !yield(c.cs.Distance(pos, cand)) {
				return
			}
		}
	}
}

// AllNeighbourDistances is the eager form of NeighbourDistances.
func (c *Container) AllNeighbourDistances(pos []float64) []float64 {
	return slices.Collect(c.NeighbourDistances(pos))
}

func (c *Container) collect(handles []int) []model.Result {
	out := make([]model.Result, len(handles))
	for i, h := range handles {
		out[i] = c.records[h]
	}
	return out
}
