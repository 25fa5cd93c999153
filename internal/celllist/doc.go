// Package celllist implements a uniform-grid spatial hash over fractional
// coordinates.
//
// The list stores integer handles, not values: the owner keeps the records in
// its own arena and uses the list only to narrow neighbor candidates. Buckets
// are allocated lazily, so memory grows with occupancy rather than with the
// number of cells.
//
// A neighbor query visits the query bucket and its 3^d-1 adjacent buckets.
// Periodic axes wrap bucket indices; non-periodic axes drop indices outside
// the grid.
package celllist
