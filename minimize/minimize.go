package minimize

import (
	"context"

	"github.com/hupe1980/nodefinder/model"
)

// Func is an objective function mapping a position to a scalar.
type Func func(ctx context.Context, pos []float64) (float64, error)

// Minimizer runs one local minimization from an initial simplex.
type Minimizer interface {
	Minimize(ctx context.Context, f Func, initial model.Simplex) (model.Result, error)
}

// MinimizerFunc adapts a function to the Minimizer interface.
type MinimizerFunc func(ctx context.Context, f Func, initial model.Simplex) (model.Result, error)

// Minimize implements Minimizer.
func (fn MinimizerFunc) Minimize(ctx context.Context, f Func, initial model.Simplex) (model.Result, error) {
	return fn(ctx, f, initial)
}

// Plain adapts an objective that needs neither a context nor error reporting.
func Plain(f func(pos []float64) float64) Func {
	return func(_ context.Context, pos []float64) (float64, error) {
		return f(pos), nil
	}
}
