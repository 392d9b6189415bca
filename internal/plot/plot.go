// Package plot renders collected run summaries as PNG charts.
package plot

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/0x5844/heat2D/internal/metrics"
)

var ErrNoData = errors.New("plot: no summaries to plot")

var (
	colorStencil  = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	colorBoundary = drawing.Color{R: 255, G: 127, B: 14, A: 255}
	colorSwap     = chart.ColorGreen
	colorOther    = drawing.Color{R: 150, G: 150, B: 150, A: 255}
)

const (
	barWidth = 60
	height   = 512
)

func width(bars int) int {
	return max(640, bars*(barWidth+40)+120)
}

// Performance draws one bar per stage with its steps-per-second rate.
func Performance(w io.Writer, summaries []metrics.Summary) error {
	if len(summaries) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, 0, len(summaries))
	top := 0.0
	for _, s := range summaries {
		bars = append(bars, chart.Value{
			Label: s.Stage,
			Value: s.Performance,
			Style: chart.Style{FillColor: colorStencil, StrokeColor: colorStencil},
		})
		top = max(top, s.Performance)
	}
	if top <= 0 {
		top = 1
	}

	graph := chart.BarChart{
		Title:    "Performance (steps/s)",
		Width:    width(len(bars)),
		Height:   height,
		BarWidth: barWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

// Breakdown draws one stacked bar per stage splitting its run time into the
// stencil, boundary, swap and other phases. Stages that took no measurable
// time are skipped.
func Breakdown(w io.Writer, summaries []metrics.Summary) error {
	bars := make([]chart.StackedBar, 0, len(summaries))
	for _, s := range summaries {
		b := s.Breakdown
		if b.Stencil+b.Boundary+b.Swap+max(b.Other, 0) <= 0 {
			continue
		}
		bars = append(bars, chart.StackedBar{
			Name:  s.Stage,
			Width: barWidth,
			Values: []chart.Value{
				phase("stencil", b.Stencil, colorStencil),
				phase("boundary", b.Boundary, colorBoundary),
				phase("swap", b.Swap, colorSwap),
				phase("other", max(b.Other, 0), colorOther),
			},
		})
	}
	if len(bars) == 0 {
		return ErrNoData
	}

	graph := chart.StackedBarChart{
		Title:  "Time breakdown",
		Width:  width(len(bars)),
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

func phase(label string, seconds float64, c drawing.Color) chart.Value {
	return chart.Value{
		Label: label,
		Value: seconds,
		Style: chart.Style{FillColor: c, StrokeColor: c},
	}
}
