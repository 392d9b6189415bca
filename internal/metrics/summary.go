package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileName is the name of the summary file written into an output directory.
const FileName = "metrics.json"

var ErrReport = errors.New("metrics: report failed")

// Breakdown splits total_time into phases, in seconds. Other is the residual
// computed on the integer durations, so the four phases sum to total_time
// exactly in Timings and within float64 rounding here.
type Breakdown struct {
	Stencil  float64 `json:"stencil_time"`
	Boundary float64 `json:"boundary_time"`
	Swap     float64 `json:"swap_time"`
	Other    float64 `json:"other_time"`
}

type ProbeSummary struct {
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Final   float64 `json:"final"`
	Max     float64 `json:"max"`
	RMS     float64 `json:"rms"`
	Samples int     `json:"samples"`
}

// Summary is one run's metrics record. Times are in seconds, TimePerStep in
// milliseconds and Performance in steps per second.
type Summary struct {
	Stage       string         `json:"stage"`
	GridSize    int            `json:"grid_size"`
	TimeSteps   int            `json:"time_steps"`
	TotalTime   float64        `json:"total_time"`
	TimePerStep float64        `json:"time_per_step"`
	Performance float64        `json:"performance"`
	Breakdown   Breakdown      `json:"breakdown"`
	Probes      []ProbeSummary `json:"probes,omitempty"`
}

func NewSummary(stage string, gridSize, steps int, t Timings) Summary {
	total := t.Total.Seconds()
	s := Summary{
		Stage:     stage,
		GridSize:  gridSize,
		TimeSteps: steps,
		TotalTime: total,
		Breakdown: Breakdown{
			Stencil:  t.Stencil.Seconds(),
			Boundary: t.Boundary.Seconds(),
			Swap:     t.Swap.Seconds(),
			Other:    t.Other().Seconds(),
		},
	}
	if steps > 0 {
		s.TimePerStep = total / float64(steps) * 1000
	}
	if total > 0 {
		s.Performance = float64(steps) / total
	}
	return s
}

// Reporter receives the summary of a completed run.
type Reporter interface {
	Report(s Summary) error
}

// JSONReporter writes Summary as indented JSON to Dir/metrics.json. The file
// is written to a temporary name first, so a failed write leaves no partial
// metrics.json behind.
type JSONReporter struct {
	Dir string
}

func (r JSONReporter) Report(s Summary) error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrReport, err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReport, err)
	}
	data = append(data, '\n')

	f, err := os.CreateTemp(r.Dir, ".metrics-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReport, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: writing %s: %v", ErrReport, tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: closing %s: %v", ErrReport, tmp, err)
	}
	if err := os.Rename(tmp, r.Path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrReport, err)
	}
	return nil
}

func (r JSONReporter) Path() string {
	return filepath.Join(r.Dir, FileName)
}

func Load(path string) (Summary, error) {
	var s Summary
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("metrics: decoding %s: %w", path, err)
	}
	return s, nil
}

// LoadAll reads dir/metrics.json and dir/*/metrics.json, sorted by stage.
func LoadAll(dir string) ([]Summary, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*", FileName))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
		paths = append(paths, filepath.Join(dir, FileName))
	}

	summaries := make([]Summary, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Stage < summaries[j].Stage
	})
	return summaries, nil
}

// BestByPrefix keeps, for every stage prefix (the part of the label before
// the first '/'), the summary with the highest performance. Stages without a
// '/' are their own prefix.
func BestByPrefix(summaries []Summary) []Summary {
	best := make(map[string]Summary)
	var order []string
	for _, s := range summaries {
		key, _, _ := strings.Cut(s.Stage, "/")
		cur, ok := best[key]
		if !ok {
			order = append(order, key)
		}
		if !ok || s.Performance > cur.Performance {
			best[key] = s
		}
	}
	out := make([]Summary, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}
