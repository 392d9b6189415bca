package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strconv"
	"strings"
	"time"

	"github.com/0x5844/heat2D/internal/grid"
	"github.com/0x5844/heat2D/internal/live"
	"github.com/0x5844/heat2D/internal/metrics"
	"github.com/0x5844/heat2D/internal/plot"
	"github.com/0x5844/heat2D/internal/solver"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
	exitReport  = 3
)

// Config holds the settings of the run subcommand.
type Config struct {
	Size      int
	Timesteps int
	Alpha     float64
	Dx        float64
	OutputDir string
	Stage     string

	Layout    string
	Schedule  string
	RowBlock  int
	ColBlock  int
	TimeBlock int
	Workers   int
	Verify    bool

	Probes    probeList
	Progress  int
	LiveAddr  string
	LiveEvery int
	LiveCells int

	Verbose    bool
	Quiet      bool
	ProfileCPU string
	ProfileMem string
	Trace      string
}

type probe struct{ row, col int }

// probeList collects repeated -probe row,col flags.
type probeList []probe

func (p *probeList) String() string {
	parts := make([]string, len(*p))
	for i, pr := range *p {
		parts[i] = fmt.Sprintf("%d,%d", pr.row, pr.col)
	}
	return strings.Join(parts, " ")
}

func (p *probeList) Set(s string) error {
	r, c, ok := strings.Cut(s, ",")
	if !ok {
		return fmt.Errorf("probe %q: want row,col", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return fmt.Errorf("probe %q: %v", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return fmt.Errorf("probe %q: %v", s, err)
	}
	*p = append(*p, probe{row, col})
	return nil
}

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "plot":
			return plotMain(args[1:])
		case "run":
			args = args[1:]
		}
	}
	return runMain(args)
}

// parseRunFlags returns a nil Config when -version was handled.
func parseRunFlags(args []string) (*Config, error) {
	config := &Config{}
	fs := flag.NewFlagSet("run", flag.ContinueOnError)

	fs.IntVar(&config.Size, "size", 100, "grid size N (N×N cells)")
	fs.IntVar(&config.Timesteps, "timesteps", 200, "number of time steps")
	fs.Float64Var(&config.Alpha, "alpha", 0.2, "thermal diffusivity")
	fs.Float64Var(&config.Dx, "dx", 0.01, "spatial resolution")
	fs.StringVar(&config.OutputDir, "output-dir", ".", "directory receiving metrics.json")
	fs.StringVar(&config.Stage, "stage", "", "stage label written to metrics.json (default go_<layout>_<schedule>)")
	fs.StringVar(&config.Layout, "layout", "contiguous", "grid memory layout (rowptr, contiguous)")
	fs.StringVar(&config.Schedule, "schedule", "direct", "traversal schedule (direct, blocked, parallel)")
	fs.IntVar(&config.RowBlock, "row-block", solver.DefaultBlocking.RowBlock, "rows per spatial block")
	fs.IntVar(&config.ColBlock, "col-block", solver.DefaultBlocking.ColBlock, "columns per spatial block")
	fs.IntVar(&config.TimeBlock, "time-block", solver.DefaultBlocking.TimeBlock, "steps per temporal block")
	fs.IntVar(&config.Workers, "workers", 0, "row bands per step for the parallel schedule (0 = GOMAXPROCS)")
	fs.BoolVar(&config.Verify, "verify", false, "compare the result against the direct schedule")
	fs.Var(&config.Probes, "probe", "record cell row,col after every step (repeatable)")
	fs.IntVar(&config.Progress, "progress", 0, "log progress every n steps (0 = off)")
	fs.StringVar(&config.LiveAddr, "live", "", "serve live field frames on this address at /ws")
	fs.IntVar(&config.LiveEvery, "live-every", 10, "steps between live frames")
	fs.IntVar(&config.LiveCells, "live-cells", 128, "maximum cells per side in a live frame")
	fs.BoolVar(&config.Verbose, "verbose", false, "verbose output")
	fs.BoolVar(&config.Quiet, "quiet", false, "minimal output")
	fs.StringVar(&config.ProfileCPU, "profile-cpu", "", "CPU profile output file")
	fs.StringVar(&config.ProfileMem, "profile-mem", "", "memory profile output file")
	fs.StringVar(&config.Trace, "trace", "", "execution trace output file")

	var showVersion bool
	fs.BoolVar(&showVersion, "version", false, "show version information")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "heat2D - explicit 2D heat diffusion solver\n\n")
		fmt.Fprintf(out, "Usage: %s [run] [OPTIONS] [size timesteps alpha dx output-dir]\n", os.Args[0])
		fmt.Fprintf(out, "       %s plot [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nLayouts:\n")
		fmt.Fprintf(out, "  rowptr     - one allocation per row\n")
		fmt.Fprintf(out, "  contiguous - one flat N*N buffer (default)\n")
		fmt.Fprintf(out, "\nSchedules:\n")
		fmt.Fprintf(out, "  direct   - single sweep over the interior (default)\n")
		fmt.Fprintf(out, "  blocked  - spatial blocks, -time-block steps per block\n")
		fmt.Fprintf(out, "  parallel - row bands on goroutines\n")
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  %s -size 512 -timesteps 1000 -output-dir results/06 -schedule blocked\n", os.Args[0])
		fmt.Fprintf(out, "  %s 200 500 0.2 0.01 results/04\n", os.Args[0])
		fmt.Fprintf(out, "  %s plot -results results\n", os.Args[0])
		fmt.Fprintf(out, "\nVersion: %s\n", Version)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if showVersion {
		fmt.Printf("heat2D version %s\n", Version)
		fmt.Printf("Built: %s\n", BuildTime)
		fmt.Printf("Go: %s\n", GoVersion)
		return nil, nil
	}

	switch fs.NArg() {
	case 0:
	case 5:
		if err := config.parsePositional(fs.Args()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("expected 0 or 5 positional arguments, got %d", fs.NArg())
	}
	return config, nil
}

func (c *Config) parsePositional(args []string) error {
	var err error
	if c.Size, err = strconv.Atoi(args[0]); err != nil {
		return fmt.Errorf("%w: size %q: %v", solver.ErrInvalidParameter, args[0], err)
	}
	if c.Timesteps, err = strconv.Atoi(args[1]); err != nil {
		return fmt.Errorf("%w: timesteps %q: %v", solver.ErrInvalidParameter, args[1], err)
	}
	if c.Alpha, err = strconv.ParseFloat(args[2], 64); err != nil {
		return fmt.Errorf("%w: alpha %q: %v", solver.ErrInvalidParameter, args[2], err)
	}
	if c.Dx, err = strconv.ParseFloat(args[3], 64); err != nil {
		return fmt.Errorf("%w: dx %q: %v", solver.ErrInvalidParameter, args[3], err)
	}
	c.OutputDir = args[4]
	return nil
}

func configureLogging(verbose, quiet bool) {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags)
	if quiet {
		log.SetOutput(io.Discard)
	} else if verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

func runMain(args []string) int {
	config, err := parseRunFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		log.Printf("Invalid arguments: %v", err)
		return exitUsage
	}
	if config == nil {
		return exitOK
	}
	configureLogging(config.Verbose, config.Quiet)

	layout, err := grid.ParseLayout(config.Layout)
	if err != nil {
		log.Printf("Invalid arguments: %v", err)
		return exitUsage
	}
	schedule, err := solver.ParseSchedule(config.Schedule)
	if err != nil {
		log.Printf("Invalid arguments: %v", err)
		return exitUsage
	}

	params := solver.Params{
		Size:  config.Size,
		Steps: config.Timesteps,
		Alpha: config.Alpha,
		Dx:    config.Dx,
	}
	opts := solver.Options{
		Layout:   layout,
		Schedule: schedule,
		Blocking: solver.Blocking{
			RowBlock:  config.RowBlock,
			ColBlock:  config.ColBlock,
			TimeBlock: config.TimeBlock,
		},
		Workers: config.Workers,
	}

	engine, err := solver.New(params, opts)
	if err != nil {
		log.Printf("Invalid parameters: %v", err)
		return exitUsage
	}

	stage := config.Stage
	if stage == "" {
		stage = fmt.Sprintf("go_%s_%s", layout, schedule)
	}

	if config.ProfileCPU != "" {
		f, err := os.Create(config.ProfileCPU)
		if err != nil {
			log.Printf("Could not create CPU profile: %v", err)
			return exitFailure
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Printf("Could not start CPU profile: %v", err)
			return exitFailure
		}
		defer pprof.StopCPUProfile()
	}

	if config.Trace != "" {
		f, err := os.Create(config.Trace)
		if err != nil {
			log.Printf("Could not create trace output file: %v", err)
			return exitFailure
		}
		defer f.Close()

		if err := trace.Start(f); err != nil {
			log.Printf("Could not start tracer: %v", err)
			return exitFailure
		}
		defer trace.Stop()
	}

	probes := make([]*solver.Probe, 0, len(config.Probes))
	for _, p := range config.Probes {
		pr := solver.NewProbe(p.row, p.col)
		probes = append(probes, pr)
		engine.Watch(pr)
	}

	if config.Progress > 0 {
		engine.Observe(progressLogger(config.Progress, params.Steps))
	}

	if config.LiveAddr != "" {
		hub, stop := startLive(config.LiveAddr)
		defer stop()
		engine.Observe(liveObserver(hub, config.LiveEvery, params.Steps, live.StrideFor(params.Size, config.LiveCells)))
		log.Printf("Live view on ws://%s/ws", config.LiveAddr)
	}

	log.Printf("Starting heat2D v%s", Version)
	log.Printf("Grid: %dx%d, Steps: %d, Alpha: %g, dx: %g, dt: %.3e",
		params.Size, params.Size, params.Steps, params.Alpha, params.Dx, params.Dt())
	log.Printf("Layout: %s, Schedule: %s, Blocking: %dx%dx%d, CPU Cores: %d",
		layout, schedule, config.RowBlock, config.ColBlock, config.TimeBlock, runtime.NumCPU())

	res, err := engine.Run()
	if err != nil {
		log.Printf("Run failed: %v", err)
		return exitFailure
	}
	defer res.Field.Release()

	if config.Verify {
		if code := verify(params, layout, res.Field); code != exitOK {
			return code
		}
	}

	summary := metrics.NewSummary(stage, params.Size, res.Steps, res.Timings)
	for _, p := range probes {
		summary.Probes = append(summary.Probes, p.Summary())
	}

	if config.ProfileMem != "" {
		writeHeapProfile(config.ProfileMem)
	}

	reporter := metrics.JSONReporter{Dir: config.OutputDir}
	if err := reporter.Report(summary); err != nil {
		log.Printf("Results computed but not saved: %v", err)
		return exitReport
	}

	logReport(summary, reporter.Path())
	if config.Verbose {
		gets, allocs := engine.PoolStats()
		log.Printf("  Tile pool: %d gets, %d allocations", gets, allocs)
	}
	return exitOK
}

func verify(params solver.Params, layout grid.Layout, field grid.Grid) int {
	ref, err := solver.New(params, solver.Options{Layout: layout, Schedule: solver.Direct})
	if err != nil {
		log.Printf("Verification setup failed: %v", err)
		return exitFailure
	}
	want, err := ref.Run()
	if err != nil {
		log.Printf("Verification run failed: %v", err)
		return exitFailure
	}
	defer want.Field.Release()

	d, err := grid.MaxAbsDiff(field, want.Field)
	if err != nil {
		log.Printf("Verification failed: %v", err)
		return exitFailure
	}
	if d != 0 || !grid.Equal(field, want.Field) {
		log.Printf("Verification failed: max abs diff vs direct schedule %g", d)
		return exitFailure
	}
	log.Printf("Verification passed: identical to direct schedule")
	return exitOK
}

// every reports whether a pass ending at step reached or crossed a multiple
// of n since the previous call, or finished the run. Passes may cover several
// steps, so step%n alone can skip multiples.
func every(n, total int) func(step int) bool {
	n = max(n, 1)
	prev := 0
	return func(step int) bool {
		due := step/n != prev/n || (step == total && step != prev)
		prev = step
		return due
	}
}

func progressLogger(n, total int) solver.Observer {
	start := time.Now()
	due := every(n, total)
	return func(step int, g grid.Grid) {
		if !due(step) {
			return
		}
		c := g.Size() / 2
		elapsed := time.Since(start)
		log.Printf("Step: %d/%d | Center: %.6f | Elapsed: %v | AvgStep: %dµs",
			step, total, g.At(c, c), elapsed.Round(time.Millisecond),
			elapsed.Microseconds()/int64(step))
	}
}

func liveObserver(hub *live.Hub, n, total, stride int) solver.Observer {
	due := every(n, total)
	return func(step int, g grid.Grid) {
		if !due(step) {
			return
		}
		hub.Broadcast(live.NewFrame(step, g, stride))
	}
}

func startLive(addr string) (*live.Hub, func()) {
	hub := live.NewHub()
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Live server error: %v", err)
		}
	}()

	return hub, func() {
		hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Live server shutdown: %v", err)
		}
	}
}

func writeHeapProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Printf("Could not create memory profile: %v", err)
		return
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("Could not write memory profile: %v", err)
	}
}

func logReport(s metrics.Summary, path string) {
	log.Printf("=== Final Simulation Report ===")
	log.Printf("  Stage: %s", s.Stage)
	log.Printf("  Grid: %dx%d, Steps: %d", s.GridSize, s.GridSize, s.TimeSteps)
	log.Printf("  Total time: %.6fs", s.TotalTime)
	log.Printf("  Time per step: %.6fms", s.TimePerStep)
	log.Printf("  Performance: %.1f steps/s", s.Performance)
	log.Printf("  Stencil: %.6fs, Boundary: %.6fs, Swap: %.6fs, Other: %.6fs",
		s.Breakdown.Stencil, s.Breakdown.Boundary, s.Breakdown.Swap, s.Breakdown.Other)
	for _, p := range s.Probes {
		log.Printf("  Probe (%d,%d): final=%.6f max=%.6f rms=%.6f", p.Row, p.Col, p.Final, p.Max, p.RMS)
	}
	log.Printf("  Metrics: %s", path)
}

func plotMain(args []string) int {
	fs := flag.NewFlagSet("plot", flag.ContinueOnError)
	results := fs.String("results", "results", "directory holding <stage>/metrics.json files")
	out := fs.String("o", "", "output directory for the PNG files (default: results directory)")
	best := fs.Bool("best", false, "keep only the fastest run per stage prefix (text before '/')")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *out == "" {
		*out = *results
	}

	summaries, err := metrics.LoadAll(*results)
	if err != nil {
		log.Printf("Could not load results: %v", err)
		return exitFailure
	}
	if *best {
		summaries = metrics.BestByPrefix(summaries)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Printf("Could not create output directory: %v", err)
		return exitFailure
	}

	charts := []struct {
		name   string
		render func(io.Writer, []metrics.Summary) error
	}{
		{"performance.png", plot.Performance},
		{"breakdown.png", plot.Breakdown},
	}
	for _, c := range charts {
		path := filepath.Join(*out, c.name)
		if err := renderFile(path, summaries, c.render); err != nil {
			log.Printf("Could not render %s: %v", path, err)
			return exitFailure
		}
		log.Printf("Wrote %s (%d stages)", path, len(summaries))
	}
	return exitOK
}

func renderFile(path string, summaries []metrics.Summary, render func(io.Writer, []metrics.Summary) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f, summaries); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
