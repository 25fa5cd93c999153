package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectives(t *testing.T) {
	ctx := context.Background()

	point, err := objective("point", nil)
	require.NoError(t, err)
	v, err := point(ctx, []float64{0.5, 0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0, v, 1e-15)
	v, err = point(ctx, []float64{0.95, 0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.45, v, 1e-12)
	_, err = point(ctx, []float64{0.5})
	require.Error(t, err)

	line, err := objective("line", nil)
	require.NoError(t, err)
	v, err = line(ctx, []float64{0.5, 0.5, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 0, v, 1e-15)

	surface, err := objective("surface", nil)
	require.NoError(t, err)
	v, err = surface(ctx, []float64{0.1, 0.2, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0, v, 1e-15)
	v, err = surface(ctx, []float64{0.5, 0.5, 0.6})
	require.NoError(t, err)
	assert.InDelta(t, 0.01, v, 1e-12)

	_, err = objective("volume", nil)
	require.Error(t, err)
}

func TestPeriodicDelta(t *testing.T) {
	assert.InDelta(t, 0.1, periodicDelta(0.05, 0.95), 1e-12)
	assert.InDelta(t, 0.1, periodicDelta(0.95, 0.05), 1e-12)
	assert.InDelta(t, 0.5, periodicDelta(0, 0.5), 1e-12)
}
