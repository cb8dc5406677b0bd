package charts

import (
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mwiater/chatlat/internal/prompts"
	"github.com/mwiater/chatlat/internal/results"
)

const (
	summaryTitle = "Average API Delay with Iterations for Different Models and Text Lengths"
	groupWidth   = 0.8
)

// scatterSeries plots markers only. The legend strokes a sample using
// GetStyle, so it reports the marker colour and size as a stroke while
// Render keeps drawing from the dot-only Style.
type scatterSeries struct {
	chart.ContinuousSeries
}

func (s scatterSeries) GetStyle() chart.Style {
	style := s.Style
	style.StrokeColor = style.DotColor
	style.StrokeWidth = style.DotWidth
	return style
}

// barSeries draws one bar per model for a single prompt type. Bars are
// offset inside each model's slot so the prompt types sit side by side.
type barSeries struct {
	name   string
	style  chart.Style
	offset float64
	width  float64
	values []results.Cell
}

func (b barSeries) GetName() string { return b.name }
func (b barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (b barSeries) GetStyle() chart.Style { return b.style }
func (b barSeries) Len() int { return len(b.values) }
func (b barSeries) GetValues(i int) (float64, float64) {
	return float64(i) + b.offset, b.values[i].Seconds
}

func (b barSeries) Validate() error {
	if len(b.values) == 0 {
		return fmt.Errorf("bar series %q has no values", b.name)
	}
	return nil
}

// Render draws the bars. Missing averages leave an empty slot.
func (b barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := b.style.InheritFrom(defaults)
	base := canvasBox.Bottom - yrange.Translate(0)
	for i, c := range b.values {
		if !c.Valid {
			continue
		}
		x := float64(i) + b.offset
		box := chart.Box{
			Left:   canvasBox.Left + xrange.Translate(x-b.width/2),
			Right:  canvasBox.Left + xrange.Translate(x+b.width/2),
			Top:    canvasBox.Bottom - yrange.Translate(c.Seconds),
			Bottom: base,
		}
		chart.Draw.Box(r, box, style)
	}
}

func titleCase(pt prompts.Type) string {
	s := string(pt)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// summarySeries builds one bar series per prompt type plus one scatter
// series per (prompt type, iteration). It also returns the largest plotted value.
func summarySeries(t *results.Table) ([]chart.Series, float64) {
	models := t.Models()
	types := t.PromptTypes()
	if len(models) == 0 || len(types) == 0 {
		return nil, 0
	}

	width := groupWidth / float64(len(types))
	var bars, dots []chart.Series
	var maxY float64
	for j, pt := range types {
		offset := -groupWidth/2 + (float64(j)+0.5)*width
		col := chart.GetDefaultColor(j)

		values := make([]results.Cell, len(models))
		for i, m := range models {
			values[i] = t.Average(m, pt)
			if values[i].Valid && values[i].Seconds > maxY {
				maxY = values[i].Seconds
			}
		}
		bars = append(bars, barSeries{
			name:   titleCase(pt) + " Average",
			offset: offset,
			width:  width * 0.9,
			values: values,
			style: chart.Style{
				FillColor:   col.WithAlpha(160),
				StrokeColor: col,
				StrokeWidth: 1,
			},
		})

		for n, it := range t.Iterations(pt) {
			key := results.Key{PromptType: pt, Iteration: it}
			var xs, ys []float64
			for i, m := range models {
				c := t.Cell(m, key)
				if !c.Valid {
					continue
				}
				xs = append(xs, float64(i)+offset)
				ys = append(ys, c.Seconds)
				if c.Seconds > maxY {
					maxY = c.Seconds
				}
			}
			if len(xs) == 0 {
				continue
			}
			dots = append(dots, scatterSeries{chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s Iteration %d", titleCase(pt), it),
				XValues: xs,
				YValues: ys,
				Style:   pointStyle(iterationColor(n), 5),
			}})
		}
	}
	if maxY == 0 {
		return nil, 0
	}
	return append(bars, dots...), maxY
}

func iterationColor(n int) drawing.Color {
	shades := []drawing.Color{
		drawing.ColorBlack,
		{R: 90, G: 90, B: 90, A: 255},
		{R: 160, G: 160, B: 160, A: 255},
	}
	return shades[n%len(shades)]
}

// RunSummary renders the grouped bar chart of per-model averages with the
// individual iterations overlaid as points, and saves it as a PNG at path.
func RunSummary(t *results.Table, path string) error {
	series, maxY := summarySeries(t)
	if len(series) == 0 {
		return &RenderError{Chart: "run summary", Path: path, Err: ErrNoData}
	}

	models := t.Models()
	ticks := make([]chart.Tick, 0, len(models))
	for i, m := range models {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: m})
	}

	ch := chart.Chart{
		Title:      summaryTitle,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 90}},
		XAxis: chart.XAxis{
			Name:  "Model",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(models)) - 0.5},
			Style: chart.Style{TextRotationDegrees: 45.0},
		},
		YAxis: chart.YAxis{
			Name:           "Delay (s)",
			Range:          &chart.ContinuousRange{Min: 0, Max: niceMax(maxY)},
			ValueFormatter: secondsFormatter,
		},
		Series: series,
	}
	return save("run summary", path, ch)
}
