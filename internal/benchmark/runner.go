// Package benchmark times chat completions across models, prompt sizes and iterations.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/mwiater/chatlat/internal/prompts"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options configures a Runner.
type Options struct {
	Models      []string
	Iterations  int
	Catalog     *prompts.Catalog
	Concurrency int
	// Timeout bounds one combination, retries and backoff included. Zero
	// disables the deadline.
	Timeout time.Duration
	// RateLimit caps probe starts per second across all workers. Zero is unlimited.
	RateLimit float64
	// Retries is the number of extra attempts after a transient failure. Each
	// retry waits out an exponential backoff first.
	Retries int
	// OnObservation is called once per finished combination. Calls are serialised.
	OnObservation func(Observation)
}

// Runner sweeps iterations x models x prompt types.
type Runner struct {
	probe    Prober
	opts     Options
	limiter  *rate.Limiter
	reportMu sync.Mutex
}

// NewRunner validates opts and builds a Runner. It performs no network calls.
func NewRunner(probe Prober, opts Options) (*Runner, error) {
	if probe == nil {
		return nil, fmt.Errorf("benchmark runner requires a prober")
	}
	if len(opts.Models) == 0 {
		return nil, &appconfig.ConfigError{Field: "models", Reason: "at least one model is required"}
	}
	for i, m := range opts.Models {
		if strings.TrimSpace(m) == "" {
			return nil, &appconfig.ConfigError{Field: "models", Reason: fmt.Sprintf("entry %d is blank", i)}
		}
	}
	if opts.Iterations < 1 {
		return nil, &appconfig.ConfigError{Field: "iterations", Reason: "must be a positive integer"}
	}
	if opts.Catalog == nil || opts.Catalog.Len() == 0 {
		return nil, &appconfig.ConfigError{Field: "prompts", Reason: "catalog is empty"}
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	r := &Runner{probe: probe, opts: opts}
	if opts.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return r, nil
}

var (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 10 * time.Second
)

// backoff returns the wait before retry number attempt+1: 500ms, 1s, 2s, ...
// capped at retryMaxDelay.
func backoff(attempt int) time.Duration {
	if attempt > 30 {
		return retryMaxDelay
	}
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay || delay <= 0 {
		delay = retryMaxDelay
	}
	return delay
}

type combination struct {
	iteration  int
	model      string
	promptType prompts.Type
	prompt     string
}

// plan lists every combination in reporting order: iteration, then model, then prompt.
func (r *Runner) plan() []combination {
	types := r.opts.Catalog.Types()
	out := make([]combination, 0, r.opts.Iterations*len(r.opts.Models)*len(types))
	for it := 1; it <= r.opts.Iterations; it++ {
		for _, model := range r.opts.Models {
			for _, pt := range types {
				text, _, _ := r.opts.Catalog.Lookup(pt)
				out = append(out, combination{iteration: it, model: model, promptType: pt, prompt: text})
			}
		}
	}
	return out
}

// Run executes every combination and returns one Observation per combination
// in plan order, regardless of completion order. Probe failures are recorded
// on the Observation and never abort the run; only cancellation of ctx does.
func (r *Runner) Run(ctx context.Context) ([]Observation, error) {
	combos := r.plan()
	results := make([]Observation, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i, c := range combos {
		if gctx.Err() != nil {
			results[i] = observationFor(c, gctx.Err())
			continue
		}
		g.Go(func() error {
			results[i] = r.measure(gctx, c)
			r.report(results[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("benchmark run interrupted: %w", err)
	}
	return results, nil
}

func (r *Runner) measure(ctx context.Context, c combination) Observation {
	obs := observationFor(c, nil)
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	for attempt := 0; ; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				if obs.Err == nil || ctx.Err() != nil {
					obs.Err = classify(c.model, err)
				}
				return obs
			}
		}

		d, err := r.probe.Probe(ctx, c.model, c.prompt)
		if err == nil {
			obs.Duration = d
			obs.Err = nil
			return obs
		}

		pe := classify(c.model, err)
		obs.Err = pe
		if !pe.Transient() || attempt >= r.opts.Retries || ctx.Err() != nil {
			return obs
		}

		wait := backoff(attempt)
		log.Printf("retrying %s/%s iteration %d in %s after transient failure (%d/%d): %v",
			c.model, c.promptType, c.iteration, wait, attempt+1, r.opts.Retries, pe.Err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return obs
		}
	}
}

func (r *Runner) report(obs Observation) {
	if obs.Err != nil && !errors.Is(obs.Err, context.Canceled) {
		log.Printf("probe failed: model=%s prompt=%s iteration=%d: %v", obs.Model, obs.PromptType, obs.Iteration, obs.Err)
	}
	if r.opts.OnObservation == nil {
		return
	}
	r.reportMu.Lock()
	defer r.reportMu.Unlock()
	r.opts.OnObservation(obs)
}

func observationFor(c combination, err error) Observation {
	obs := Observation{Model: c.model, PromptType: c.promptType, Iteration: c.iteration}
	if err != nil {
		obs.Err = classify(c.model, err)
	}
	return obs
}
