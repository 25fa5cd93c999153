package search

import (
	"github.com/hupe1980/nodefinder/coords"
	"github.com/hupe1980/nodefinder/model"
)

// generateSimplices returns one simplex per vertex of a regular grid with
// meshSize[i] points along axis i, spanning limits inclusive of both ends.
// Each simplex has its first vertex on the grid point and vertex i+1 offset
// by size_i / (2 meshSize_i) along axis i.
func generateSimplices(limits []coords.Limit, meshSize []int) []model.Simplex {
	dim := len(limits)
	axes := make([][]float64, dim)
	total := 1
	for i, l := range limits {
		axes[i] = linspace(l.Lower, l.Upper, meshSize[i])
		total *= len(axes[i])
	}
	if total == 0 {
		return nil
	}

	offsets := make([]float64, dim)
	for i, l := range limits {
		offsets[i] = l.Size() / (2 * float64(meshSize[i]))
	}

	out := make([]model.Simplex, 0, total)
	idx := make([]int, dim)
	for {
		s := make(model.Simplex, dim+1)
		for k := range s {
			v := make([]float64, dim)
			for i := range v {
				v[i] = axes[i][idx[i]]
			}
			if k > 0 {
				v[k-1] += offsets[k-1]
			}
			s[k] = v
		}
		out = append(out, s)

		// Odometer with the last axis varying fastest.
		i := dim - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(axes[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

// refinementStencil returns the simplices of a mesh over [-box/2, box/2]^d,
// or nil when any refinement mesh size is zero.
func refinementStencil(dim int, boxSize float64, meshSize []int) []model.Simplex {
	for _, m := range meshSize {
		if m == 0 {
			return nil
		}
	}
	half := boxSize / 2
	limits := make([]coords.Limit, dim)
	for i := range limits {
		limits[i] = coords.Limit{Lower: -half, Upper: half}
	}
	return generateSimplices(limits, meshSize)
}

// linspace returns n evenly spaced values over [lo, hi].
func linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
