package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nodefinder/coords"
)

func TestLinspace(t *testing.T) {
	assert.Nil(t, linspace(0, 1, 0))
	assert.Equal(t, []float64{2}, linspace(2, 3, 1))
	assert.Equal(t, []float64{0, 0.5, 1}, linspace(0, 1, 3))
}

func TestGenerateSimplices(t *testing.T) {
	limits := []coords.Limit{{Lower: 0, Upper: 1}, {Lower: -1, Upper: 1}}
	simplices := generateSimplices(limits, []int{2, 3})
	require.Len(t, simplices, 6)

	first := simplices[0]
	require.Len(t, first, 3)
	assert.Equal(t, []float64{0, -1}, first[0])
	assert.InDelta(t, 0.25, first[1][0], 1e-12)
	assert.InDelta(t, -1, first[1][1], 1e-12)
	assert.InDelta(t, 0, first[2][0], 1e-12)
	assert.InDelta(t, -1+2.0/6, first[2][1], 1e-12)

	// The last axis varies fastest.
	assert.Equal(t, []float64{0, 0}, simplices[1][0])
	assert.Equal(t, []float64{0, 1}, simplices[2][0])
	assert.Equal(t, []float64{1, -1}, simplices[3][0])

	for _, s := range simplices {
		assert.Equal(t, 2, s.Dim())
	}
}

func TestGenerateSimplices_ZeroMesh(t *testing.T) {
	limits := []coords.Limit{{Lower: 0, Upper: 1}, {Lower: 0, Upper: 1}}
	assert.Empty(t, generateSimplices(limits, []int{2, 0}))
}

func TestRefinementStencil(t *testing.T) {
	assert.Nil(t, refinementStencil(2, 1, []int{3, 0}))

	stencil := refinementStencil(2, 1, []int{3, 3})
	require.Len(t, stencil, 9)
	assert.Equal(t, []float64{-0.5, -0.5}, stencil[0][0])
	assert.Equal(t, []float64{0, 0}, stencil[4][0])
	assert.Equal(t, []float64{0.5, 0.5}, stencil[8][0])
}
