package solver

import (
	"math"

	"github.com/0x5844/heat2D/internal/grid"
	"github.com/0x5844/heat2D/internal/metrics"
)

// Probe records one cell's value after every step. Register it with
// Solver.Watch or Options.Probes; cells outside the grid are never recorded.
type Probe struct {
	Row, Col int

	samples int
	last    float64
	max     float64
	energy  float64
}

func NewProbe(row, col int) *Probe {
	return &Probe{Row: row, Col: col}
}

func (p *Probe) record(v float64) {
	p.last = v
	if a := math.Abs(v); a > p.max {
		p.max = a
	}
	p.energy += v * v
	p.samples++
}

func (p *Probe) Summary() metrics.ProbeSummary {
	s := metrics.ProbeSummary{
		Row:     p.Row,
		Col:     p.Col,
		Final:   p.last,
		Max:     p.max,
		Samples: p.samples,
	}
	if p.samples > 0 {
		s.RMS = math.Sqrt(p.energy / float64(p.samples))
	}
	return s
}

// watch binds a probe to the interior cell whose value it mirrors. After a
// boundary pass every edge cell equals its clamped interior neighbour, so
// edge probes read that cell.
type watch struct {
	p    *Probe
	i, j int
	// vals holds the values of (i, j) after each sub-step of a blocked pass.
	vals []float64
}

func newWatches(probes []*Probe, n, k int) []watch {
	var ws []watch
	for _, p := range probes {
		if p.Row < 0 || p.Row >= n || p.Col < 0 || p.Col >= n {
			continue
		}
		w := watch{p: p, i: p.Row, j: p.Col}
		if n >= 3 {
			w.i, w.j = min(max(w.i, 1), n-2), min(max(w.j, 1), n-2)
		}
		if k > 1 {
			w.vals = make([]float64, k)
		}
		ws = append(ws, w)
	}
	return ws
}

// capture stores sub-step t of a blocked tile for the watches inside core.
func (s *Solver) capture(core span, t int, at func(i, j int) float64) {
	for x := range s.watches {
		w := &s.watches[x]
		if w.i >= core.r0 && w.i < core.r1 && w.j >= core.c0 && w.j < core.c1 {
			w.vals[t-1] = at(w.i, w.j)
		}
	}
}

// recordPass hands the k steps of a finished pass to the probes. cur is the
// field after the pass.
func (s *Solver) recordPass(cur grid.Grid, k int) {
	tiled := k > 1 && cur.Size() >= 3
	for _, w := range s.watches {
		if !tiled {
			v := cur.At(w.i, w.j)
			for t := 0; t < k; t++ {
				w.p.record(v)
			}
			continue
		}
		for _, v := range w.vals[:k] {
			w.p.record(v)
		}
	}
}
