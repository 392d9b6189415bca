package metrics

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTimingsOtherIsResidual(t *testing.T) {
	var tm Timings
	tm.Add(Stencil, 700*time.Millisecond)
	tm.Add(Boundary, 50*time.Millisecond)
	tm.Add(Swap, 5*time.Millisecond)
	tm.Add(Stencil, 100*time.Millisecond)
	tm.Total = time.Second

	if tm.Stencil != 800*time.Millisecond {
		t.Fatalf("stencil = %v", tm.Stencil)
	}
	if got := tm.Other(); got != 145*time.Millisecond {
		t.Fatalf("other = %v, want 145ms", got)
	}
	if tm.Stencil+tm.Boundary+tm.Swap+tm.Other() != tm.Total {
		t.Fatal("phases do not sum to total")
	}
}

func TestMeasure(t *testing.T) {
	var tm Timings
	called := false
	tm.Measure(Boundary, func() { called = true })
	if !called {
		t.Fatal("Measure did not run f")
	}
	if tm.Boundary < 0 || tm.Stencil != 0 || tm.Swap != 0 {
		t.Fatalf("unexpected timings %+v", tm)
	}
}

func TestNewSummary(t *testing.T) {
	tm := Timings{
		Total:    2 * time.Second,
		Stencil:  1500 * time.Millisecond,
		Boundary: 200 * time.Millisecond,
		Swap:     100 * time.Millisecond,
	}
	s := NewSummary("06_cache_blocking", 100, 400, tm)

	if s.TotalTime != 2 {
		t.Fatalf("total = %v", s.TotalTime)
	}
	if math.Abs(s.TimePerStep-5) > 1e-12 {
		t.Fatalf("time per step = %v ms, want 5", s.TimePerStep)
	}
	if math.Abs(s.Performance-200) > 1e-12 {
		t.Fatalf("performance = %v, want 200", s.Performance)
	}
	b := s.Breakdown
	if math.Abs(b.Stencil+b.Boundary+b.Swap+b.Other-s.TotalTime) > 1e-9 {
		t.Fatalf("breakdown %+v does not sum to %v", b, s.TotalTime)
	}
}

func TestBreakdownSumsToTotalInJSON(t *testing.T) {
	tm := Timings{
		Total:    3*time.Second + 700_000_001*time.Nanosecond,
		Stencil:  2*time.Second + 123_456_789*time.Nanosecond,
		Boundary: 333_333_333 * time.Nanosecond,
		Swap:     7_777 * time.Nanosecond,
	}
	dir := t.TempDir()
	r := JSONReporter{Dir: dir}
	if err := r.Report(NewSummary("odd", 64, 3, tm)); err != nil {
		t.Fatalf("Report: %v", err)
	}
	s, err := Load(r.Path())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b := s.Breakdown
	if d := math.Abs(b.Stencil + b.Boundary + b.Swap + b.Other - s.TotalTime); d > 1e-12 {
		t.Fatalf("breakdown %+v misses total %v by %g", b, s.TotalTime, d)
	}
}

func TestNewSummaryZeroSteps(t *testing.T) {
	s := NewSummary("empty", 10, 0, Timings{})
	if s.TimePerStep != 0 || s.Performance != 0 {
		t.Fatalf("expected zero derived metrics, got %+v", s)
	}
	if math.IsNaN(s.TimePerStep) || math.IsInf(s.Performance, 0) {
		t.Fatal("derived metrics not finite")
	}
}

func TestJSONReporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "stage")
	r := JSONReporter{Dir: dir}
	want := NewSummary("04_cache_utilization", 64, 10, Timings{Total: time.Second, Stencil: time.Millisecond})
	want.Probes = []ProbeSummary{{Row: 32, Col: 32, Final: 1, Max: 100, RMS: 20, Samples: 10}}

	if err := r.Report(want); err != nil {
		t.Fatalf("Report: %v", err)
	}
	got, err := Load(r.Path())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Stage != want.Stage || got.GridSize != 64 || got.TimeSteps != 10 {
		t.Fatalf("loaded %+v", got)
	}
	if len(got.Probes) != 1 || got.Probes[0].Max != 100 {
		t.Fatalf("probes = %+v", got.Probes)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only %s in output dir, found %d entries", FileName, len(entries))
	}
}

func TestJSONReporterUnwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := JSONReporter{Dir: file}.Report(NewSummary("x", 3, 1, Timings{}))
	if !errors.Is(err, ErrReport) {
		t.Fatalf("err = %v, want ErrReport", err)
	}
}

func TestLoadAllAndBest(t *testing.T) {
	root := t.TempDir()
	write := func(sub, stage string, perf float64) {
		t.Helper()
		s := Summary{Stage: stage, Performance: perf}
		if err := (JSONReporter{Dir: filepath.Join(root, sub)}).Report(s); err != nil {
			t.Fatal(err)
		}
	}
	write("b", "parallel/threads_4", 300)
	write("a", "direct", 100)
	write("c", "parallel/threads_8", 450)
	write("d", "parallel/threads_1", 120)

	all, err := LoadAll(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("loaded %d summaries, want 4", len(all))
	}
	if all[0].Stage != "direct" {
		t.Fatalf("first stage = %q, want sorted order", all[0].Stage)
	}

	best := BestByPrefix(all)
	if len(best) != 2 {
		t.Fatalf("best = %+v", best)
	}
	if best[1].Stage != "parallel/threads_8" {
		t.Fatalf("best parallel = %q", best[1].Stage)
	}
}
