package minimize

import (
	"context"
	"math"
)

// NodeSource exposes the positions of accepted nodes.
type NodeSource interface {
	VisitNodePositions(fn func(pos []float64))
}

// DistanceFunc measures the separation of two positions.
type DistanceFunc func(a, b []float64) float64

// minDistanceFraction floors the distance entering the repulsive term, so a
// position exactly on a node yields a large finite value.
const minDistanceFraction = 1e-12

// FakePotential is a repulsive bias centered on every accepted node:
//
//	V(x) = Σ_nodes (w / d) · exp(-d / w),  d = dist(x, node)
//
// It diverges as d → 0 and is negligible beyond a few widths w.
type FakePotential struct {
	nodes NodeSource
	dist  DistanceFunc
	width float64
}

// NewFakePotential creates a bias of the given width over nodes.
func NewFakePotential(nodes NodeSource, dist DistanceFunc, width float64) *FakePotential {
	return &FakePotential{nodes: nodes, dist: dist, width: width}
}

// Width returns the decay length of the bias.
func (p *FakePotential) Width() float64 { return p.width }

// Value returns the bias at pos.
func (p *FakePotential) Value(pos []float64) float64 {
	if p.width <= 0 {
		return 0
	}
	var v float64
	p.nodes.VisitNodePositions(func(node []float64) {
		v += p.term(p.dist(pos, node))
	})
	return v
}

func (p *FakePotential) term(d float64) float64 {
	d = math.Max(d, minDistanceFraction*p.width)
	return p.width / d * math.Exp(-d/p.width)
}

// Wrap returns f plus the bias. The bias is read at evaluation time, so nodes
// found while a minimization is running repel its later steps.
func (p *FakePotential) Wrap(f Func) Func {
	return func(ctx context.Context, pos []float64) (float64, error) {
		v, err := f(ctx, pos)
		if err != nil {
			return 0, err
		}
		return v + p.Value(pos), nil
	}
}
