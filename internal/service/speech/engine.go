// Package speech wraps a continuous, interim-result speech-to-text engine into a
// stable text-accumulation model.
package speech

import "context"

// Result is one recognized segment.
// Final segments are confirmed and never revised; interim segments are
// provisional and fully replaced by the next batch.
type Result struct {
	Text       string
	Final      bool
	Confidence float64
}

// Callback receives engine events for one capture session.
// Each batch carries the newly finalized segments plus the complete current
// interim hypothesis.
type Callback interface {
	// OnResults is called for every batch of recognition results.
	OnResults(results []Result)

	// OnEnd is called when the engine stops listening on its own (e.g. silence timeout).
	OnEnd()

	// OnError is called when the engine fails mid-listen. Listening has ended.
	OnError(err error)
}

// Engine defines the interface for platform speech engines (Google, browser, mock).
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string

	// Start begins continuous listening with interim results, delivering events to cb.
	Start(ctx context.Context, cb Callback) error

	// Stop asks the engine to halt the current listening session.
	Stop() error

	// Close releases the engine.
	Close() error
}
