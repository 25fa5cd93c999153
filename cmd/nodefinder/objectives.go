package main

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/nodefinder"
)

// periodicDelta returns the minimum-image offset of x from c on a unit period.
func periodicDelta(x, c float64) float64 {
	d := math.Mod(x-c, 1)
	if d < 0 {
		d++
	}
	return math.Min(d, 1-d)
}

// objective returns the built-in gap function called name.
//
//	point:   distance to the nearest of the configured nodes
//	line:    distance to the line x = y = 0.5
//	surface: |z - 0.5| weighted by the distance to the z axis through the center
func objective(name string, nodes [][]float64) (nodefinder.Objective, error) {
	switch name {
	case "point":
		if len(nodes) == 0 {
			nodes = [][]float64{{0.5, 0.5, 0.5}}
		}
		return func(_ context.Context, x []float64) (float64, error) {
			best := math.Inf(1)
			for _, n := range nodes {
				if len(n) != len(x) {
					return 0, fmt.Errorf("node %v has %d coordinates, position has %d", n, len(n), len(x))
				}
				var sum float64
				for i := range x {
					d := periodicDelta(x[i], n[i])
					sum += d * d
				}
				best = math.Min(best, math.Sqrt(sum))
			}
			return best, nil
		}, nil
	case "line":
		return func(_ context.Context, x []float64) (float64, error) {
			if len(x) < 2 {
				return 0, fmt.Errorf("line objective needs at least 2 dimensions, got %d", len(x))
			}
			return math.Hypot(periodicDelta(x[0], 0.5), periodicDelta(x[1], 0.5)), nil
		}, nil
	case "surface":
		return func(_ context.Context, x []float64) (float64, error) {
			if len(x) != 3 {
				return 0, fmt.Errorf("surface objective needs 3 dimensions, got %d", len(x))
			}
			dx, dy, dz := periodicDelta(x[0], 0.5), periodicDelta(x[1], 0.5), periodicDelta(x[2], 0.5)
			return dz * (0.1 + 10*(dx*dx+dy*dy)), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown objective %q", name)
	}
}
