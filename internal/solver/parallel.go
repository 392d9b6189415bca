package solver

import (
	"github.com/exascience/pargo/parallel"

	"github.com/0x5844/heat2D/internal/grid"
)

// banded runs one step with the interior rows split into bands. Bands only
// read cur and write disjoint rows of next, so they need no coordination
// beyond the join at the end of parallel.Range.
func (s *Solver) banded(cur, next grid.Grid) {
	n := cur.Size()
	if n < 3 {
		return
	}
	bands := min(s.opts.Workers, n-2)
	parallel.Range(1, n-1, bands, func(low, high int) {
		s.sweep(cur, next, low, high, 1, n-1)
	})
}
