package celllist

import (
	"fmt"
	"iter"
	"math"
)

// MaxCellsPerDim bounds the grid resolution on every axis.
const MaxCellsPerDim = 100

// CellList is a spatial hash of handles keyed by fractional position.
// It is not safe for concurrent mutation.
type CellList struct {
	numCells []int
	strides  []int
	buckets  map[int][]int
	size     int
}

// New creates a cell list with numCells buckets per dimension. Values are
// clamped to [1, MaxCellsPerDim].
func New(numCells []int) *CellList {
	n := make([]int, len(numCells))
	strides := make([]int, len(numCells))
	stride := 1
	for i := len(numCells) - 1; i >= 0; i-- {
		n[i] = min(max(numCells[i], 1), MaxCellsPerDim)
		strides[i] = stride
		stride *= n[i]
	}
	return &CellList{
		numCells: n,
		strides:  strides,
		buckets:  make(map[int][]int),
	}
}

// NumCellsFor derives the per-dimension cell count for a domain of the given
// size so that one cell spans at least cutoff. A zero cutoff yields the maximum.
func NumCellsFor(size []float64, cutoff float64) []int {
	out := make([]int, len(size))
	for i, s := range size {
		if cutoff == 0 {
			out[i] = MaxCellsPerDim
			continue
		}
		out[i] = min(max(int(s/cutoff), 1), MaxCellsPerDim)
	}
	return out
}

// NumCells returns a copy of the per-dimension cell counts.
func (c *CellList) NumCells() []int { return append([]int(nil), c.numCells...) }

// Len returns the number of stored handles.
func (c *CellList) Len() int { return c.size }

// Add stores handle in the bucket containing frac.
func (c *CellList) Add(frac []float64, handle int) {
	if len(frac) != len(c.numCells) {
		panic(fmt.Sprintf("celllist: position has %d dimensions, list has %d", len(frac), len(c.numCells)))
	}
	key := c.key(c.cellIndex(frac))
	c.buckets[key] = append(c.buckets[key], handle)
	c.size++
}

// Neighbours yields every handle stored in the bucket of frac and in its
// immediate neighbors. periodic must have one entry per dimension.
func (c *CellList) Neighbours(frac []float64, periodic []bool) iter.Seq[int] {
	return func(yield func(int) bool) {
		if c.size == 0 {
			return
		}
		center := c.cellIndex(frac)
		dim := len(center)
		offset := make([]int, dim)
		for i := range offset {
			offset[i] = -1
		}
		seen := make(map[int]struct{}, 27)

		for {
			if key, ok := c.neighbourKey(center, offset, periodic); ok {
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					for _, h := range c.buckets[key] {
						if !yield(h) {
							return
						}
					}
				}
			}

			// Advance the odometer over {-1, 0, 1}^d.
			i := 0
			for ; i < dim; i++ {
				if offset[i] < 1 {
					offset[i]++
					break
				}
				offset[i] = -1
			}
			if i == dim {
				return
			}
		}
	}
}

// Values returns all stored handles. The order carries no meaning.
func (c *CellList) Values() []int {
	out := make([]int, 0, c.size)
	for _, b := range c.buckets {
		out = append(out, b...)
	}
	return out
}

func (c *CellList) cellIndex(frac []float64) []int {
	idx := make([]int, len(frac))
	for i, f := range frac {
		j := int(math.Floor(f * float64(c.numCells[i])))
		idx[i] = min(max(j, 0), c.numCells[i]-1)
	}
	return idx
}

func (c *CellList) neighbourKey(center, offset []int, periodic []bool) (int, bool) {
	key := 0
	for i, base := range center {
		j := base + offset[i]
		n := c.numCells[i]
		if j < 0 || j >= n {
			if !periodic[i] {
				return 0, false
			}
			j = (j + n) % n
		}
		key += j * c.strides[i]
	}
	return key, true
}

func (c *CellList) key(idx []int) int {
	key := 0
	for i, j := range idx {
		key += j * c.strides[i]
	}
	return key
}
