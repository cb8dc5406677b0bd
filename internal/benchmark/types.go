package benchmark

import (
	"errors"
	"fmt"
	"time"

	"github.com/mwiater/chatlat/internal/prompts"
	"github.com/mwiater/chatlat/internal/providers"
)

// Observation is the outcome of one probe. Err is set when the probe failed,
// in which case Duration carries no meaning.
type Observation struct {
	Model      string
	PromptType prompts.Type
	Iteration  int
	Duration   time.Duration
	Err        error
}

// Failed reports whether the probe produced no measurement.
func (o Observation) Failed() bool { return o.Err != nil }

// Seconds returns the measured duration in seconds.
func (o Observation) Seconds() float64 { return o.Duration.Seconds() }

// ErrorKind classifies a probe failure for retry decisions.
type ErrorKind int

const (
	// Permanent failures (bad credential, unknown model) are never retried.
	Permanent ErrorKind = iota
	// Transient failures (network, rate limiting, server errors) may be retried.
	Transient
)

func (k ErrorKind) String() string {
	if k == Transient {
		return "transient"
	}
	return "permanent"
}

// ProbeError wraps a failed completion call.
type ProbeError struct {
	Model string
	Kind  ErrorKind
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s failed (%s): %v", e.Model, e.Kind, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Transient reports whether the failure is eligible for retry.
func (e *ProbeError) Transient() bool { return e.Kind == Transient }

// classify wraps err in a ProbeError unless it already is one.
func classify(model string, err error) *ProbeError {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe
	}
	kind := Permanent
	if providers.IsTransient(err) {
		kind = Transient
	}
	return &ProbeError{Model: model, Kind: kind, Err: err}
}
