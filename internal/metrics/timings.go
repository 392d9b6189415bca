// Package metrics accumulates per-phase run timings and writes them out as
// metrics.json summaries.
package metrics

import "time"

// Phase names one measured part of a time step.
type Phase int

const (
	Stencil Phase = iota
	Boundary
	Swap
)

// Timings is the accumulator threaded through a run. Other is not stored; it
// is whatever part of Total the measured phases do not cover.
type Timings struct {
	Total    time.Duration
	Stencil  time.Duration
	Boundary time.Duration
	Swap     time.Duration
}

func (t *Timings) Add(p Phase, d time.Duration) {
	switch p {
	case Stencil:
		t.Stencil += d
	case Boundary:
		t.Boundary += d
	case Swap:
		t.Swap += d
	}
}

// Measure runs f and adds its wall-clock duration to phase p.
func (t *Timings) Measure(p Phase, f func()) {
	start := time.Now()
	f()
	t.Add(p, time.Since(start))
}

func (t Timings) Other() time.Duration {
	return t.Total - t.Stencil - t.Boundary - t.Swap
}
