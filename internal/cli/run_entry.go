package chatlat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/mwiater/chatlat/internal/benchmark"
	"github.com/mwiater/chatlat/internal/charts"
	"github.com/mwiater/chatlat/internal/logging"
	"github.com/mwiater/chatlat/internal/prompts"
	"github.com/mwiater/chatlat/internal/providerfactory"
	"github.com/mwiater/chatlat/internal/results"
	"github.com/mwiater/chatlat/internal/util"
)

var (
	newCompleter = providerfactory.NewCompleter
	lookupEnv    = os.Getenv
	clock        = time.Now

	successfulResult = color.New(color.FgGreen).SprintFunc()
	failedResult     = color.New(color.FgRed).SprintFunc()
	savedArtifact    = color.New(color.FgCyan).SprintFunc()
	warningResult    = color.New(color.FgYellow).SprintFunc()
)

// runBenchmark executes one complete run. Configuration problems are reported
// before any request is sent. A failed table write is returned as an error;
// a failed chart is reported and the run still succeeds.
func runBenchmark(ctx context.Context, out io.Writer, loaded *appconfig.Config) error {
	if loaded == nil {
		return &appconfig.ConfigError{Field: "config", Reason: "not loaded"}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loaded.WithDefaults().Effective()
	if err := cfg.Validate(); err != nil {
		return err
	}
	apiKey, err := cfg.ResolveAPIKey(lookupEnv)
	if err != nil {
		return err
	}

	catalog := prompts.Default()
	for _, e := range catalog.Entries() {
		_, n, _ := catalog.Lookup(e.Type)
		logging.LogEvent("prompt %s: %d characters", e.Type, n)
	}

	client, err := newCompleter(cfg, apiKey)
	if err != nil {
		return err
	}
	probe, err := benchmark.NewLatencyProbe(client, prompts.SystemPreamble, cfg.MaxTokens)
	if err != nil {
		return err
	}

	total := len(cfg.Models) * cfg.Iterations * catalog.Len()
	done := 0
	runner, err := benchmark.NewRunner(probe, benchmark.Options{
		Models:      cfg.Models,
		Iterations:  cfg.Iterations,
		Catalog:     catalog,
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.ProbeTimeout(),
		RateLimit:   cfg.RateLimit,
		Retries:     cfg.Retries,
		OnObservation: func(o benchmark.Observation) {
			done++
			fmt.Fprintln(out, progressLine(done, total, o))
		},
	})
	if err != nil {
		return err
	}

	stamp := results.RunStamp(clock())
	logging.LogEvent("run %s: %d models, %d iterations, %d probes", stamp, len(cfg.Models), cfg.Iterations, total)

	obs, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	tbl := results.FromObservations(obs)
	fmt.Fprintln(out)
	results.PrintSummary(out, tbl)

	writer := results.NewWriter(cfg.ResultsDir)
	tablePath, err := writer.Write(tbl, stamp)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", savedArtifact("Saved result table:"), tablePath)

	plotPath := writer.Path(charts.PlotFileName(stamp))
	if err := charts.RunSummary(tbl, plotPath); err != nil {
		reportRenderError(out, err)
	} else {
		fmt.Fprintf(out, "%s %s\n", savedArtifact("Saved run chart:"), plotPath)
	}

	return renderTrend(out, writer, results.DefaultTrendKey)
}

const maxErrorRunes = 160

// progressLine formats one completed probe.
func progressLine(done, total int, o benchmark.Observation) string {
	prefix := fmt.Sprintf("[%d/%d] %s %s #%d:", done, total, o.Model, o.PromptType, o.Iteration)
	if o.Failed() {
		return fmt.Sprintf("%s %s", prefix, failedResult("FAILED ("+util.TruncateRunes(o.Err.Error(), maxErrorRunes)+")"))
	}
	return fmt.Sprintf("%s %s", prefix, successfulResult(fmt.Sprintf("%.3fs", o.Seconds())))
}

// renderTrend scans the results directory and redraws the trend chart. Only a
// failure to read the directory itself is returned.
func renderTrend(out io.Writer, writer *results.Writer, k results.Key) error {
	history, err := writer.ScanHistory(k)
	if err != nil {
		return err
	}
	path := writer.Path(charts.TrendFileName)
	if err := charts.Trend(history, k, path); err != nil {
		reportRenderError(out, err)
		return nil
	}
	fmt.Fprintf(out, "%s %s\n", savedArtifact("Saved trend chart:"), path)
	return nil
}

func reportRenderError(out io.Writer, err error) {
	logging.LogEvent("chart not saved: %v", err)
	msg := fmt.Sprintf("chart not saved: %v", err)
	if errors.Is(err, charts.ErrNoData) {
		msg = fmt.Sprintf("chart skipped: %v", err)
	}
	fmt.Fprintln(out, warningResult(msg))
}
