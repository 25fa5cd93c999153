package coords

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoDimensions is returned when a system is created without any axis.
	ErrNoDimensions = errors.New("coords: at least one dimension is required")

	// ErrEmptyInterval is returned when an axis has upper <= lower.
	ErrEmptyInterval = errors.New("coords: upper limit must be greater than lower limit")
)

// ErrDimensionMismatch indicates that per-axis inputs disagree in length.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("coords: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Limit is the [Lower, Upper) interval of one axis.
type Limit struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Size returns the extent of the interval.
func (l Limit) Size() float64 { return l.Upper - l.Lower }

// System is the coordinate system of the search domain.
type System struct {
	limits   []Limit
	periodic []bool
	size     []float64
}

// New creates a coordinate system. periodic may be nil, in which case every
// axis is periodic; a single-element slice applies to every axis.
func New(limits []Limit, periodic []bool) (*System, error) {
	dim := len(limits)
	if dim == 0 {
		return nil, ErrNoDimensions
	}

	switch len(periodic) {
	case 0:
		periodic = make([]bool, dim)
		for i := range periodic {
			periodic[i] = true
		}
	case 1:
		p := periodic[0]
		periodic = make([]bool, dim)
		for i := range periodic {
			periodic[i] = p
		}
	case dim:
		periodic = append([]bool(nil), periodic...)
	default:
		return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(periodic)}
	}

	size := make([]float64, dim)
	for i, l := range limits {
		if !(l.Upper > l.Lower) {
			return nil, fmt.Errorf("%w: axis %d: [%g, %g)", ErrEmptyInterval, i, l.Lower, l.Upper)
		}
		size[i] = l.Size()
	}

	return &System{
		limits:   append([]Limit(nil), limits...),
		periodic: periodic,
		size:     size,
	}, nil
}

// Dim returns the number of axes.
func (s *System) Dim() int { return len(s.limits) }

// Limits returns a copy of the per-axis limits.
func (s *System) Limits() []Limit { return append([]Limit(nil), s.limits...) }

// Periodic returns a copy of the per-axis periodicity flags.
func (s *System) Periodic() []bool { return append([]bool(nil), s.periodic...) }

// Size returns a copy of the per-axis extents.
func (s *System) Size() []float64 { return append([]float64(nil), s.size...) }

// NormalizePosition returns pos with every periodic component wrapped into
// its [lower, upper) interval. The input is not modified.
func (s *System) NormalizePosition(pos []float64) []float64 {
	out := make([]float64, len(pos))
	for i, x := range pos {
		if s.periodic[i] {
			l := s.limits[i]
			out[i] = l.Lower + wrap(x-l.Lower, s.size[i])
		} else {
			out[i] = x
		}
	}
	return out
}

// Frac maps pos to fractional coordinates. Periodic components are always in
// [0, 1); non-periodic components may fall outside when pos is outside the limits.
func (s *System) Frac(pos []float64) []float64 {
	out := make([]float64, len(pos))
	for i, x := range pos {
		f := (x - s.limits[i].Lower) / s.size[i]
		if s.periodic[i] {
			f = wrap(f, 1)
		}
		out[i] = f
	}
	return out
}

// Distance returns the minimum-image Euclidean distance between a and b.
func (s *System) Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if s.periodic[i] {
			d = wrap(d, s.size[i])
			d = math.Min(d, s.size[i]-d)
		}
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Equal reports whether two systems describe the same domain.
func (s *System) Equal(o *System) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.limits) != len(o.limits) {
		return false
	}
	for i := range s.limits {
		if s.limits[i] != o.limits[i] || s.periodic[i] != o.periodic[i] {
			return false
		}
	}
	return true
}

func (s *System) String() string {
	return fmt.Sprintf("coords.System(limits=%v, periodic=%v)", s.limits, s.periodic)
}

// wrap folds x into [0, period).
func wrap(x, period float64) float64 {
	r := math.Mod(x, period)
	if r < 0 {
		r += period
	}
	// math.Mod of a tiny negative number plus period can round up to period.
	if r >= period {
		r = 0
	}
	return r
}
