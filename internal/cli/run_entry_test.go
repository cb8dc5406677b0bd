package chatlat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/mwiater/chatlat/internal/benchmark"
	"github.com/mwiater/chatlat/internal/charts"
	"github.com/mwiater/chatlat/internal/prompts"
	"github.com/mwiater/chatlat/internal/providers"
	"github.com/mwiater/chatlat/internal/results"
)

// fakeAPI answers chat completions and rejects the model named "missing-model".
func fakeAPI(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
			return
		}
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model == "missing-model" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"The model does not exist"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"` + req.Model + `","choices":[{"message":{"role":"assistant","content":"Consider the terms."}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func stubEnvironment(t *testing.T, key string, at time.Time) {
	t.Helper()
	prevEnv, prevClock := lookupEnv, clock
	lookupEnv = func(name string) string {
		if name == appconfig.DefaultAPIKeyEnv {
			return key
		}
		return ""
	}
	clock = func() time.Time { return at }
	t.Cleanup(func() {
		lookupEnv = prevEnv
		clock = prevClock
	})
}

func TestRunBenchmarkWritesArtifacts(t *testing.T) {
	var hits int32
	srv := fakeAPI(t, &hits)
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.Local)
	stubEnvironment(t, "test-key", at)

	dir := filepath.Join(t.TempDir(), "results")
	cfg := &appconfig.Config{
		Models:     []string{"gpt-4", "missing-model"},
		Iterations: 2,
		ResultsDir: dir,
		BaseURL:    srv.URL,
	}

	var out bytes.Buffer
	if err := runBenchmark(context.Background(), &out, cfg); err != nil {
		t.Fatalf("runBenchmark: %v\n%s", err, out.String())
	}

	probes := 2 * 2 * prompts.Default().Len()
	if int(atomic.LoadInt32(&hits)) != probes {
		t.Fatalf("expected %d requests, got %d", probes, hits)
	}

	text := out.String()
	for _, want := range []string{
		"[12/12]",
		"FAILED",
		"Latency summary (seconds):",
		"Saved result table:",
		"Saved run chart:",
		"Saved trend chart:",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}

	stamp := results.RunStamp(at)
	for _, name := range []string{results.TableFileName(stamp), charts.PlotFileName(stamp), charts.TrendFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected artifact %s: %v", name, err)
		}
	}

	tbl, err := results.ReadTable(filepath.Join(dir, results.TableFileName(stamp)))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if got := tbl.Models(); len(got) != 2 || got[1] != "missing-model" {
		t.Fatalf("expected a row for the failing model, got %v", got)
	}
	if tbl.Average("missing-model", prompts.Short).Valid {
		t.Fatalf("expected missing average for failing model")
	}
	if !tbl.Average("gpt-4", prompts.Short).Valid {
		t.Fatalf("expected valid average for working model")
	}

	// second run in the same hour reuses the directory
	out.Reset()
	if err := runBenchmark(context.Background(), &out, cfg); err != nil {
		t.Fatalf("second runBenchmark: %v", err)
	}
}

func TestRunBenchmarkConfigErrorsBeforeNetwork(t *testing.T) {
	var built int32
	prev := newCompleter
	newCompleter = func(cfg appconfig.Config, apiKey string) (providers.Completer, error) {
		atomic.AddInt32(&built, 1)
		return prev(cfg, apiKey)
	}
	t.Cleanup(func() { newCompleter = prev })

	cases := map[string]struct {
		key string
		cfg appconfig.Config
	}{
		"empty model list": {key: "test-key", cfg: appconfig.Config{Models: []string{}, Iterations: 1}},
		"zero iterations":  {key: "test-key", cfg: appconfig.Config{Models: []string{"gpt-4"}, Iterations: 0}},
		"missing api key":  {key: "", cfg: appconfig.Config{Models: []string{"gpt-4"}, Iterations: 1}},
		"bad base url":     {key: "test-key", cfg: appconfig.Config{Models: []string{"gpt-4"}, Iterations: 1, BaseURL: "localhost:8080"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			stubEnvironment(t, tc.key, time.Now())
			cfg := tc.cfg
			cfg.ResultsDir = t.TempDir()
			err := runBenchmark(context.Background(), &bytes.Buffer{}, &cfg)
			if !errors.Is(err, appconfig.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
	// only the bad URL case reaches the factory, which refuses to build a client
	if built != 1 {
		t.Fatalf("expected exactly one factory call, got %d", built)
	}
}

func TestRunBenchmarkDebugModeRestrictsRun(t *testing.T) {
	var hits int32
	srv := fakeAPI(t, &hits)
	stubEnvironment(t, "test-key", time.Date(2026, 10, 17, 10, 0, 0, 0, time.Local))

	cfg := &appconfig.Config{
		Models:     []string{"gpt-4", "gpt-3.5-turbo", "gpt-4-0613"},
		Iterations: 3,
		Debug:      true,
		ResultsDir: t.TempDir(),
		BaseURL:    srv.URL,
	}
	var out bytes.Buffer
	if err := runBenchmark(context.Background(), &out, cfg); err != nil {
		t.Fatalf("runBenchmark: %v", err)
	}
	if int(hits) != prompts.Default().Len() {
		t.Fatalf("expected one model x one iteration, got %d requests", hits)
	}
	if strings.Contains(out.String(), "gpt-3.5-turbo") {
		t.Fatalf("debug run should only probe the first model:\n%s", out.String())
	}
}

func TestRunBenchmarkCancelled(t *testing.T) {
	var hits int32
	srv := fakeAPI(t, &hits)
	stubEnvironment(t, "test-key", time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := filepath.Join(t.TempDir(), "results")
	cfg := &appconfig.Config{Models: []string{"gpt-4"}, Iterations: 1, ResultsDir: dir, BaseURL: srv.URL}
	if err := runBenchmark(ctx, &bytes.Buffer{}, cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected no results directory after cancelled run")
	}
}

func TestProgressLine(t *testing.T) {
	ok := benchmark.Observation{Model: "gpt-4", PromptType: prompts.Short, Iteration: 2, Duration: 1500 * time.Millisecond}
	if got := progressLine(3, 24, ok); !strings.Contains(got, "[3/24] gpt-4 short #2:") || !strings.Contains(got, "1.500s") {
		t.Fatalf("unexpected progress line %q", got)
	}
	bad := benchmark.Observation{Model: "gpt-4", PromptType: prompts.Long, Iteration: 1, Err: errors.New("boom")}
	if got := progressLine(4, 24, bad); !strings.Contains(got, "FAILED (boom)") {
		t.Fatalf("unexpected failure line %q", got)
	}
}

func TestRunTrend(t *testing.T) {
	dir := t.TempDir()
	w := results.NewWriter(dir)
	for i, stamp := range []string{"2026101710", "2026101509", "2026101608"} {
		tbl := results.FromObservations([]benchmark.Observation{
			{Model: "gpt-4", PromptType: prompts.Short, Iteration: 1, Duration: time.Duration(i+1) * time.Second},
			{Model: "gpt-4", PromptType: prompts.Long, Iteration: 1, Duration: time.Duration(i+2) * time.Second},
		})
		if _, err := w.Write(tbl, stamp); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	cfg := &appconfig.Config{ResultsDir: dir}
	var out bytes.Buffer
	if err := runTrend(&out, cfg, "long.1"); err != nil {
		t.Fatalf("runTrend: %v", err)
	}
	if !strings.Contains(out.String(), "Saved trend chart:") {
		t.Fatalf("unexpected output %s", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, charts.TrendFileName)); err != nil {
		t.Fatalf("expected trend image: %v", err)
	}

	if err := runTrend(&out, cfg, "long"); !errors.Is(err, appconfig.ErrConfiguration) {
		t.Fatalf("expected configuration error for bad column, got %v", err)
	}
}

func TestRunTrendEmptyDirectory(t *testing.T) {
	cfg := &appconfig.Config{ResultsDir: filepath.Join(t.TempDir(), "none")}
	var out bytes.Buffer
	if err := runTrend(&out, cfg, ""); err != nil {
		t.Fatalf("runTrend: %v", err)
	}
	if !strings.Contains(out.String(), "chart skipped") {
		t.Fatalf("expected skipped message, got %s", out.String())
	}
}
