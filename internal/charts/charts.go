// Package charts renders the run summary and historical trend images.
package charts

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	// TrendFileName is overwritten on every run.
	TrendFileName = "trend.png"

	plotPrefix = "plot-"
	plotExt    = ".png"

	defaultWidth  = 1280
	defaultHeight = 720
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// PlotFileName returns the run summary image name for a run stamp.
func PlotFileName(stamp string) string { return plotPrefix + stamp + plotExt }

// RenderError reports a chart that could not be produced. It never affects
// tabular data already written.
type RenderError struct {
	Chart string
	Path  string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s chart %s: %v", e.Chart, e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// pointStyle draws markers only, no connecting line.
func pointStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

// niceMax rounds v up to 1, 2 or 5 times a power of ten, leaving headroom.
func niceMax(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	target := v * 1.05
	mag := math.Pow(10, math.Floor(math.Log10(target)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= target {
			return m * mag
		}
	}
	return 10 * mag
}

func secondsFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return ""
}

func save(name, path string, ch chart.Chart) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &RenderError{Chart: name, Path: path, Err: err}
	}
	file, err := os.Create(path)
	if err != nil {
		return &RenderError{Chart: name, Path: path, Err: err}
	}
	defer file.Close()

	if err := render(file, ch); err != nil {
		return &RenderError{Chart: name, Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &RenderError{Chart: name, Path: path, Err: err}
	}
	log.Printf("%s chart written to %s", name, path)
	return nil
}

func render(w io.Writer, ch chart.Chart) error {
	if ch.Width == 0 {
		ch.Width = defaultWidth
	}
	if ch.Height == 0 {
		ch.Height = defaultHeight
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}
