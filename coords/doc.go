// Package coords describes the bounded, optionally periodic search domain.
//
// A System is immutable after construction and safe for concurrent use. It is
// shared read-only by the result container, the cell list and the controller.
//
// # Periodicity
//
// On a periodic axis the interval [lower, upper) wraps around: positions are
// folded back into the interval by NormalizePosition, fractional coordinates
// are always in [0, 1), and Distance uses the minimum-image convention.
// Non-periodic axes are left untouched.
//
//	cs, _ := coords.New([]coords.Limit{{0, 1}, {0, 1}}, []bool{true, false})
//	cs.Distance([]float64{0.05, 0.5}, []float64{0.95, 0.5}) // 0.1
package coords
