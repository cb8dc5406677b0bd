package benchmark

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/mwiater/chatlat/internal/providers"
)

// Prober times a single completion round trip.
type Prober interface {
	Probe(ctx context.Context, model, prompt string) (time.Duration, error)
}

// LatencyProbe sends a system preamble plus one user prompt and measures the
// wall-clock time until the response arrives. The response content is discarded.
type LatencyProbe struct {
	client    providers.Completer
	preamble  string
	maxTokens int
	now       func() time.Time
}

// NewLatencyProbe builds a probe. A zero maxTokens selects the default ceiling.
func NewLatencyProbe(client providers.Completer, preamble string, maxTokens int) (*LatencyProbe, error) {
	if client == nil {
		return nil, fmt.Errorf("latency probe requires a completion client")
	}
	if maxTokens == 0 {
		maxTokens = appconfig.DefaultMaxTokens
	}
	if maxTokens < 0 {
		return nil, &appconfig.ConfigError{Field: "maxTokens", Reason: "must be a positive integer"}
	}
	return &LatencyProbe{client: client, preamble: preamble, maxTokens: maxTokens, now: time.Now}, nil
}

// Probe performs the timed call. Failures are returned as *ProbeError.
func (p *LatencyProbe) Probe(ctx context.Context, model, prompt string) (time.Duration, error) {
	if strings.TrimSpace(model) == "" {
		return 0, &ProbeError{Model: model, Kind: Permanent, Err: fmt.Errorf("model name is required")}
	}
	if strings.TrimSpace(prompt) == "" {
		return 0, &ProbeError{Model: model, Kind: Permanent, Err: fmt.Errorf("prompt is required")}
	}

	req := providers.CompletionRequest{
		Model: model,
		Messages: []providers.ChatMessage{
			{Role: "system", Content: p.preamble},
			{Role: "user", Content: prompt},
		},
		MaxTokens: p.maxTokens,
	}

	start := p.now()
	_, err := p.client.Complete(ctx, req)
	end := p.now()
	if err != nil {
		return 0, classify(model, err)
	}
	return end.Sub(start), nil
}
