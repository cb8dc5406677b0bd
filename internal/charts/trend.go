package charts

import (
	"fmt"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/mwiater/chatlat/internal/results"
)

const trendTimeLayout = "2006-01-02 15h"

// trendSeries returns one chronologically ordered line per model, in the
// order models first appear. Missing latencies are left out of the line.
func trendSeries(records []results.HistoricalRecord) ([]chart.TimeSeries, float64) {
	sorted := append([]results.HistoricalRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	var order []string
	byModel := map[string]*chart.TimeSeries{}
	var maxY float64
	for _, rec := range sorted {
		if !rec.Latency.Valid {
			continue
		}
		ts, ok := byModel[rec.Model]
		if !ok {
			ts = &chart.TimeSeries{Name: rec.Model, Style: lineStyle(chart.GetDefaultColor(len(order)))}
			byModel[rec.Model] = ts
			order = append(order, rec.Model)
		}
		ts.XValues = append(ts.XValues, rec.Time)
		ts.YValues = append(ts.YValues, rec.Latency.Seconds)
		if rec.Latency.Seconds > maxY {
			maxY = rec.Latency.Seconds
		}
	}

	out := make([]chart.TimeSeries, 0, len(order))
	for _, m := range order {
		ts := *byModel[m]
		// a single point needs a second one to give the series a non-zero span
		if len(ts.XValues) == 1 {
			ts.XValues = append(ts.XValues, ts.XValues[0].Add(time.Second))
			ts.YValues = append(ts.YValues, ts.YValues[0])
		}
		out = append(out, ts)
	}
	return out, maxY
}

func timeFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return chart.TimeFromFloat64(f).Local().Format(trendTimeLayout)
	}
	if t, ok := v.(time.Time); ok {
		return t.Local().Format(trendTimeLayout)
	}
	return ""
}

// Trend renders one line per model of the latency projected from column k
// across historical runs and saves it as a PNG at path, replacing any
// previous image.
func Trend(records []results.HistoricalRecord, k results.Key, path string) error {
	lines, maxY := trendSeries(records)
	if len(lines) == 0 {
		return &RenderError{Chart: "trend", Path: path, Err: ErrNoData}
	}

	series := make([]chart.Series, 0, len(lines))
	for _, ts := range lines {
		series = append(series, ts)
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("%s Prompt Latency Across Runs (iteration %d)", titleCase(k.PromptType), k.Iteration),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 60}},
		XAxis: chart.XAxis{
			Name:           "Run",
			ValueFormatter: timeFormatter,
			Style:          chart.Style{TextRotationDegrees: 45.0},
		},
		YAxis: chart.YAxis{
			Name:           "Delay (s)",
			Range:          &chart.ContinuousRange{Min: 0, Max: niceMax(maxY)},
			ValueFormatter: secondsFormatter,
		},
		Series: series,
	}
	return save("trend", path, ch)
}
