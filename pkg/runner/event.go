package runner

import (
	"time"

	"github.com/macropower/synthaser/pkg/synthase"
)

// Output is the result of a classification run.
type Output struct {
	Timestamp time.Time
	// Error joins document load failures and per-synthase classification
	// failures. Synthases that could be classified are still reported.
	Error error
	// Synthases contains the classified synthases selected by the
	// configured query, in input order.
	Synthases []*synthase.Synthase
	// Total is the number of synthases classified, before the query.
	Total int
}

// NewOutput creates a new [Output] timestamped with the current time.
func NewOutput(opts ...OutputOpt) Output {
	o := &Output{
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return *o
}

type OutputOpt func(*Output)

// WithError sets the error for the output.
func WithError(err error) OutputOpt {
	return func(o *Output) {
		o.Error = err
	}
}

// Event represents an event related to a classification run.
type Event any

type (
	// EventStart indicates that a run has started.
	EventStart struct{}

	// EventEnd indicates that a run has ended.
	// It carries the output of the run, which could be an error.
	EventEnd Output

	// EventCancel indicates that a run has been canceled.
	EventCancel struct{}

	// EventConfigure indicates that the runner has been configured (or re-configured).
	EventConfigure struct{}
)
