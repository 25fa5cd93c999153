package minimize

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nodefinder/model"
)

func cone(center []float64) Func {
	return Plain(func(x []float64) float64 {
		var s float64
		for i := range x {
			d := x[i] - center[i]
			s += d * d
		}
		return math.Sqrt(s)
	})
}

func cornerSimplex(origin []float64, step float64) model.Simplex {
	n := len(origin)
	s := make(model.Simplex, n+1)
	for i := range s {
		v := append([]float64(nil), origin...)
		if i > 0 {
			v[i-1] += step
		}
		s[i] = v
	}
	return s
}

func TestNelderMead_Quadratic(t *testing.T) {
	nm := NelderMead{XTol: 1e-8, FTol: 1e-12, MaxIter: 2000, MaxFev: 4000}
	f := Plain(func(x []float64) float64 {
		return (x[0]-1)*(x[0]-1) + 2*(x[1]+0.5)*(x[1]+0.5)
	})

	res, err := nm.Minimize(context.Background(), f, cornerSimplex([]float64{0, 0}, 0.25))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.InDelta(t, 1.0, res.Pos[0], 1e-4)
	assert.InDelta(t, -0.5, res.Pos[1], 1e-4)
	assert.InDelta(t, 0.0, res.Value, 1e-8)
}

func TestNelderMead_Cone(t *testing.T) {
	center := []float64{0.5, 0.5, 0.5}
	nm := NelderMead{XTol: 2e-4, FTol: 5e-8, MaxIter: 3000, MaxFev: 3000}

	res, err := nm.Minimize(context.Background(), cone(center), cornerSimplex([]float64{0, 0, 0}, 0.25))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Less(t, res.Value, 1e-6)
	assert.InDeltaSlice(t, center, res.Pos, 1e-6)
}

func TestNelderMead_BudgetExhausted(t *testing.T) {
	nm := NelderMead{XTol: 1e-15, FTol: 1e-15, MaxFev: 10}
	res, err := nm.Minimize(context.Background(), cone([]float64{0.5, 0.5}), cornerSimplex([]float64{0, 0}, 0.1))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Len(t, res.Pos, 2)
}

func TestNelderMead_ObjectiveError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	f := func(_ context.Context, _ []float64) (float64, error) {
		calls++
		if calls == 5 {
			return 0, boom
		}
		return float64(calls), nil
	}

	_, err := NelderMead{}.Minimize(context.Background(), f, cornerSimplex([]float64{0, 0}, 0.1))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, calls)
}

func TestNelderMead_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NelderMead{}.Minimize(ctx, cone([]float64{0}), cornerSimplex([]float64{1}, 0.1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNelderMead_InvalidSimplex(t *testing.T) {
	_, err := NelderMead{}.Minimize(context.Background(), cone([]float64{0, 0}), model.Simplex{{0, 0}, {1, 0}})
	assert.ErrorIs(t, err, ErrInvalidSimplex)

	_, err = NelderMead{}.Minimize(context.Background(), cone([]float64{0, 0}), model.Simplex{{0, 0}, {1}, {0, 1}})
	assert.ErrorIs(t, err, ErrInvalidSimplex)
}

func TestNelderMead_DoesNotModifyInitial(t *testing.T) {
	initial := cornerSimplex([]float64{0, 0}, 0.5)
	snapshot := initial.Clone()
	_, err := NelderMead{}.Minimize(context.Background(), cone([]float64{0.2, 0.3}), initial)
	require.NoError(t, err)
	assert.True(t, initial.Equal(snapshot))
}
