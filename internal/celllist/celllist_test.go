package celllist

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(c *CellList, frac []float64, periodic []bool) []int {
	out := slices.Collect(c.Neighbours(frac, periodic))
	slices.Sort(out)
	return out
}

func TestNew_ClampsCells(t *testing.T) {
	c := New([]int{0, 5, 1000})
	assert.Equal(t, []int{1, 5, MaxCellsPerDim}, c.NumCells())
}

func TestNumCellsFor(t *testing.T) {
	assert.Equal(t, []int{3, 1, 100}, NumCellsFor([]float64{1, 0.1, 1000}, 1.0/3))
	assert.Equal(t, []int{100, 100}, NumCellsFor([]float64{1, 2}, 0))
}

func TestAdd_Values(t *testing.T) {
	c := New([]int{10, 10})
	c.Add([]float64{0.05, 0.05}, 1)
	c.Add([]float64{0.55, 0.95}, 2)
	c.Add([]float64{0.56, 0.94}, 3)

	vals := c.Values()
	slices.Sort(vals)
	assert.Equal(t, []int{1, 2, 3}, vals)
	assert.Equal(t, 3, c.Len())
}

func TestNeighbours(t *testing.T) {
	c := New([]int{10, 10})
	c.Add([]float64{0.05, 0.05}, 1) // cell (0, 0)
	c.Add([]float64{0.15, 0.15}, 2) // cell (1, 1)
	c.Add([]float64{0.35, 0.05}, 3) // cell (3, 0)
	c.Add([]float64{0.95, 0.95}, 4) // cell (9, 9)

	t.Run("Periodic", func(t *testing.T) {
		got := collect(c, []float64{0.01, 0.01}, []bool{true, true})
		assert.Equal(t, []int{1, 2, 4}, got)
	})

	t.Run("NonPeriodic", func(t *testing.T) {
		got := collect(c, []float64{0.01, 0.01}, []bool{false, false})
		assert.Equal(t, []int{1, 2}, got)
	})

	t.Run("MixedPeriodicity", func(t *testing.T) {
		// Only the first axis wraps, so (9, 9) is not adjacent to (0, 0).
		got := collect(c, []float64{0.01, 0.01}, []bool{true, false})
		assert.Equal(t, []int{1, 2}, got)
	})

	t.Run("EarlyStop", func(t *testing.T) {
		n := 0
		for range c.Neighbours([]float64{0.01, 0.01}, []bool{true, true}) {
			n++
			break
		}
		assert.Equal(t, 1, n)
	})
}

func TestNeighbours_SmallGridNoDuplicates(t *testing.T) {
	// With two cells per axis, offsets -1 and +1 map to the same bucket.
	c := New([]int{2, 1})
	c.Add([]float64{0.1, 0.5}, 1)
	c.Add([]float64{0.9, 0.5}, 2)

	got := collect(c, []float64{0.1, 0.5}, []bool{true, true})
	assert.Equal(t, []int{1, 2}, got)
}

func TestNeighbours_NeverMissesCloseHandle(t *testing.T) {
	const cells = 7
	r := rand.New(rand.NewPCG(1, 2))
	c := New([]int{cells, cells, cells})
	periodic := []bool{true, true, true}

	points := make([][]float64, 500)
	for i := range points {
		points[i] = []float64{r.Float64(), r.Float64(), r.Float64()}
		c.Add(points[i], i)
	}

	cellWidth := 1.0 / cells
	for qi := 0; qi < 50; qi++ {
		q := []float64{r.Float64(), r.Float64(), r.Float64()}
		found := make(map[int]bool)
		for h := range c.Neighbours(q, periodic) {
			found[h] = true
		}
		for i, p := range points {
			if periodicDist(p, q) < cellWidth {
				require.True(t, found[i], "point %d at %v missed for query %v", i, p, q)
			}
		}
	}
}

func periodicDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := math.Abs(a[i] - b[i])
		d = min(d, 1-d)
		s += d * d
	}
	return math.Sqrt(s)
}
