// Package solver runs the explicit finite-difference heat equation on a
// square grid, timing every phase of the step.
package solver

import (
	"fmt"
	"time"

	"github.com/0x5844/heat2D/internal/grid"
	"github.com/0x5844/heat2D/internal/metrics"
)

// Observer is called with the resolved field after the initial condition
// (step 0) and after every completed pass. A Blocked pass covers up to
// Blocking.TimeBlock steps, so step may advance by more than one between
// calls; use a Probe for per-step values. Observers run synchronously
// between steps and must not modify g or keep it past the call.
type Observer func(step int, g grid.Grid)

type Options struct {
	Layout   grid.Layout
	Schedule Schedule
	Blocking Blocking
	// Workers is the number of row bands per step for the Parallel
	// schedule; zero lets the runtime decide.
	Workers   int
	Observers []Observer
	Probes    []*Probe
}

// Result is the outcome of a completed run. Field is owned by the caller.
type Result struct {
	Params   Params
	Layout   grid.Layout
	Schedule Schedule
	Steps    int
	Field    grid.Grid
	Timings  metrics.Timings
}

type Solver struct {
	params Params
	opts   Options

	alpha, dt, dx float64

	pool    *bufferPool
	watches []watch
}

// New validates the parameters and options. Nothing is allocated until Run.
func New(p Params, opts Options) (*Solver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch opts.Schedule {
	case Direct, Parallel:
	case Blocked:
		if err := opts.Blocking.Validate(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown schedule %v", ErrInvalidParameter, opts.Schedule)
	}
	switch opts.Layout {
	case grid.RowPointer, grid.Contiguous:
	default:
		return nil, fmt.Errorf("%w: unknown layout %v", ErrInvalidParameter, opts.Layout)
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidParameter, opts.Workers)
	}

	return &Solver{
		params: p,
		opts:   opts,
		alpha:  p.Alpha,
		dt:     p.Dt(),
		dx:     p.Dx,
		pool:   newBufferPool(),
	}, nil
}

// Observe registers an additional observer.
func (s *Solver) Observe(o Observer) {
	s.opts.Observers = append(s.opts.Observers, o)
}

// Watch registers a probe that records its cell after every step.
func (s *Solver) Watch(p *Probe) {
	s.opts.Probes = append(s.opts.Probes, p)
}

// Run executes all steps. Both buffers are released on every exit path
// except the final field, which is handed to the caller in Result.
func (s *Solver) Run() (*Result, error) {
	pair, err := grid.NewPair(s.opts.Layout, s.params.Size)
	if err != nil {
		return nil, err
	}
	defer pair.Release()

	s.watches = newWatches(s.opts.Probes, s.params.Size, s.stepsPerPass(s.params.Steps))
	defer func() { s.watches = nil }()

	c := s.params.Center()
	pair.Current.Set(c, c, InitialTemperature)
	grid.ApplyNeumann(pair.Current)
	s.notify(0, pair.Current)

	var t metrics.Timings
	start := time.Now()

	step := 0
	for step < s.params.Steps {
		k := s.stepsPerPass(s.params.Steps - step)
		cur, next := pair.Current, pair.Next

		t.Measure(metrics.Stencil, func() { s.advance(cur, next, k) })
		t.Measure(metrics.Boundary, func() { grid.ApplyNeumann(next) })
		t.Measure(metrics.Swap, pair.Swap)

		step += k
		s.recordPass(pair.Current, k)
		s.notify(step, pair.Current)
	}
	t.Total = time.Since(start)

	field := pair.Current
	pair.Current = nil

	return &Result{
		Params:   s.params,
		Layout:   s.opts.Layout,
		Schedule: s.opts.Schedule,
		Steps:    step,
		Field:    field,
		Timings:  t,
	}, nil
}

// stepsPerPass is how many steps the next pass advances the field.
func (s *Solver) stepsPerPass(remaining int) int {
	if s.opts.Schedule == Blocked {
		return min(s.opts.Blocking.TimeBlock, remaining)
	}
	return 1
}

// advance writes the interior of next, k steps ahead of cur.
func (s *Solver) advance(cur, next grid.Grid, k int) {
	n := cur.Size()
	if n < 3 {
		// No interior cells: the field carries over unchanged.
		for i := 0; i < n; i++ {
			copy(next.Row(i), cur.Row(i))
		}
		return
	}
	switch s.opts.Schedule {
	case Blocked:
		s.blocked(cur, next, k)
	case Parallel:
		s.banded(cur, next)
	default:
		s.sweep(cur, next, 1, n-1, 1, n-1)
	}
}

// sweep updates rows [r0,r1) and columns [c0,c1) of dst from src.
func (s *Solver) sweep(src, dst grid.Grid, r0, r1, c0, c1 int) {
	alpha, dt, dx := s.alpha, s.dt, s.dx
	for i := r0; i < r1; i++ {
		up, row, down := src.Row(i-1), src.Row(i), src.Row(i+1)
		out := dst.Row(i)
		for j := c0; j < c1; j++ {
			out[j] = Stencil(row[j], row[j-1], row[j+1], up[j], down[j], alpha, dt, dx)
		}
	}
}

func (s *Solver) notify(step int, g grid.Grid) {
	for _, o := range s.opts.Observers {
		o(step, g)
	}
}
