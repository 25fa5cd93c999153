// Package minimize defines the local minimizer contract used by the search
// controller, a Nelder–Mead implementation of it, and the repulsive bias
// that pushes minimizations away from nodes that were already found.
//
// # Contract
//
// A Minimizer turns a starting simplex of d+1 vertices into exactly one
// model.Result. Failing to converge within the iteration or evaluation budget
// is not an error: the result is returned with Success set to false. The only
// error a Minimizer returns is one produced by the objective itself (or a
// cancelled context), and it is returned unchanged.
//
// Every objective evaluation may block; minimizations run concurrently and
// objectives must be safe for concurrent use.
package minimize
