package minimize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/hupe1980/nodefinder/model"
)

// ErrInvalidSimplex is returned when the initial simplex does not have d+1
// vertices of equal dimension d.
var ErrInvalidSimplex = errors.New("minimize: simplex must have d+1 vertices of dimension d")

// Nelder–Mead coefficients for reflection, expansion, contraction and shrink.
const (
	rho   = 1.0
	chi   = 2.0
	psi   = 0.5
	sigma = 0.5
)

// NelderMead is a derivative-free simplex minimizer.
//
// It converges when every vertex is within XTol of the best vertex on every
// axis and every vertex value is within FTol of the best value.
type NelderMead struct {
	XTol float64
	FTol float64
	// MaxIter and MaxFev bound the iteration and evaluation counts.
	// A zero value means 200 per dimension.
	MaxIter int
	MaxFev  int
}

// Minimize implements Minimizer.
func (nm NelderMead) Minimize(ctx context.Context, f Func, initial model.Simplex) (model.Result, error) {
	n := initial.Dim()
	if n == 0 || len(initial) != n+1 {
		return model.Result{}, fmt.Errorf("%w: got %d vertices of dimension %d", ErrInvalidSimplex, len(initial), n)
	}
	for _, v := range initial {
		if len(v) != n {
			return model.Result{}, ErrInvalidSimplex
		}
	}

	maxIter := nm.MaxIter
	if maxIter <= 0 {
		maxIter = 200 * n
	}
	maxFev := nm.MaxFev
	if maxFev <= 0 {
		maxFev = 200 * n
	}

	fcalls := 0
	eval := func(x []float64) (float64, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fcalls++
		return f(ctx, x)
	}

	sim := initial.Clone()
	fsim := make([]float64, n+1)
	for i, v := range sim {
		fv, err := eval(v)
		if err != nil {
			return model.Result{}, err
		}
		fsim[i] = fv
	}
	sortSimplex(sim, fsim)

	xbar := make([]float64, n)
	point := func(a, b float64) []float64 {
		// a*xbar + b*worst
		out := make([]float64, n)
		for j := range out {
			out[j] = a*xbar[j] + b*sim[n][j]
		}
		return out
	}

	iterations := 1
	for fcalls < maxFev && iterations < maxIter {
		if converged(sim, fsim, nm.XTol, nm.FTol) {
			break
		}

		for j := range xbar {
			var s float64
			for i := 0; i < n; i++ {
				s += sim[i][j]
			}
			xbar[j] = s / float64(n)
		}

		xr := point(1+rho, -rho)
		fxr, err := eval(xr)
		if err != nil {
			return model.Result{}, err
		}

		shrink := false
		switch {
		case fxr < fsim[0]:
			xe := point(1+rho*chi, -rho*chi)
			fxe, err := eval(xe)
			if err != nil {
				return model.Result{}, err
			}
			if fxe < fxr {
				sim[n], fsim[n] = xe, fxe
			} else {
				sim[n], fsim[n] = xr, fxr
			}
		case fxr < fsim[n-1]:
			sim[n], fsim[n] = xr, fxr
		case fxr < fsim[n]:
			// Outside contraction.
			xc := point(1+psi*rho, -psi*rho)
			fxc, err := eval(xc)
			if err != nil {
				return model.Result{}, err
			}
			if fxc <= fxr {
				sim[n], fsim[n] = xc, fxc
			} else {
				shrink = true
			}
		default:
			// Inside contraction.
			xcc := point(1-psi, psi)
			fxcc, err := eval(xcc)
			if err != nil {
				return model.Result{}, err
			}
			if fxcc < fsim[n] {
				sim[n], fsim[n] = xcc, fxcc
			} else {
				shrink = true
			}
		}

		if shrink {
			for i := 1; i <= n; i++ {
				for j := range sim[i] {
					sim[i][j] = sim[0][j] + sigma*(sim[i][j]-sim[0][j])
				}
				fv, err := eval(sim[i])
				if err != nil {
					return model.Result{}, err
				}
				fsim[i] = fv
			}
		}

		sortSimplex(sim, fsim)
		iterations++
	}

	success := fcalls < maxFev && iterations < maxIter
	return model.Result{
		Pos:     slices.Clone(sim[0]),
		Value:   fsim[0],
		Success: success,
	}, nil
}

func converged(sim [][]float64, fsim []float64, xtol, ftol float64) bool {
	var dx, df float64
	for i := 1; i < len(sim); i++ {
		for j := range sim[i] {
			dx = math.Max(dx, math.Abs(sim[i][j]-sim[0][j]))
		}
		df = math.Max(df, math.Abs(fsim[0]-fsim[i]))
	}
	return dx <= xtol && df <= ftol
}

// sortSimplex orders vertices by ascending value.
func sortSimplex(sim [][]float64, fsim []float64) {
	sort.Sort(byValue{sim, fsim})
}

type byValue struct {
	sim  [][]float64
	fsim []float64
}

func (b byValue) Len() int           { return len(b.fsim) }
func (b byValue) Less(i, j int) bool { return b.fsim[i] < b.fsim[j] }
func (b byValue) Swap(i, j int) {
	b.sim[i], b.sim[j] = b.sim[j], b.sim[i]
	b.fsim[i], b.fsim[j] = b.fsim[j], b.fsim[i]
}
