// Package mock provides a scripted speech engine for running without a microphone
// or cloud credentials. Each listening session plays one simulated answer as
// progressive interim hypotheses followed by a final segment.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech"
)

// SimulatedUtterance is a scripted segment of speech.
type SimulatedUtterance struct {
	Partials   []string // Progressive interim hypotheses
	Final      string   // Finalized text
	Confidence float64  // Confidence for the final segment
}

// SimulatedAnswer is the sequence of utterances spoken in one listening session.
type SimulatedAnswer []SimulatedUtterance

// DefaultAnswers are cycled across sessions.
var DefaultAnswers = []SimulatedAnswer{
	{
		{Partials: []string{"I led", "I led the migration"}, Final: "I led the migration of our billing service", Confidence: 0.93},
		{Partials: []string{"to Go", "to Go and cut"}, Final: "to Go and cut p99 latency in half", Confidence: 0.9},
	},
	{
		{Partials: []string{"When two", "When two teammates disagreed"}, Final: "When two teammates disagreed on the design", Confidence: 0.92},
		{Partials: []string{"I set up", "I set up a short review"}, Final: "I set up a short review with both options written down", Confidence: 0.88},
	},
	{
		{Partials: []string{"I would start", "I would start by profiling"}, Final: "I would start by profiling the hot path", Confidence: 0.95},
	},
	{
		{Partials: []string{"My biggest", "My biggest mistake was"}, Final: "My biggest mistake was shipping without a rollback plan", Confidence: 0.91},
		{Partials: []string{"Since then"}, Final: "Since then every release has a documented rollback", Confidence: 0.9},
	},
	{
		{Partials: []string{"I want", "I want to grow"}, Final: "I want to grow into a technical lead role", Confidence: 0.97},
	},
}

// Config controls the simulated timing.
type Config struct {
	Answers  []SimulatedAnswer
	Interval time.Duration // Delay between successive results
	// EndAfterAnswer ends the session once the answer is spoken, like a silence timeout.
	EndAfterAnswer bool
}

// DefaultConfig returns a configuration with realistic pacing.
func DefaultConfig() Config {
	return Config{
		Answers:        DefaultAnswers,
		Interval:       150 * time.Millisecond,
		EndAfterAnswer: true,
	}
}

// Engine implements speech.Engine with scripted responses.
type Engine struct {
	cfg Config

	mu       sync.Mutex
	next     int
	cancel   context.CancelFunc
	done     chan struct{}
	cb       speech.Callback
	closed   bool
	sessions int
}

// New creates a new mock engine.
func New(cfg Config) *Engine {
	if len(cfg.Answers) == 0 {
		cfg.Answers = DefaultAnswers
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Engine{cfg: cfg}
}

// Name implements speech.Engine.
func (e *Engine) Name() string { return "mock" }

// Start plays the next scripted answer.
func (e *Engine) Start(ctx context.Context, cb speech.Callback) error {
	_ = e.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return &speech.CaptureError{Kind: speech.KindAborted}
	}

	answer := e.cfg.Answers[e.next%len(e.cfg.Answers)]
	e.next++
	e.sessions++

	sctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.cb = cb

	go e.play(sctx, done, cb, answer)
	return nil
}

func (e *Engine) play(ctx context.Context, done chan struct{}, cb speech.Callback, answer SimulatedAnswer) {
	defer close(done)

	wait := func() bool {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(e.cfg.Interval):
			return true
		}
	}

	for _, utt := range answer {
		for _, partial := range utt.Partials {
			if !wait() {
				return
			}
			cb.OnResults([]speech.Result{{Text: partial}})
		}
		if !wait() {
			return
		}
		cb.OnResults([]speech.Result{{Text: utt.Final, Final: true, Confidence: utt.Confidence}})
	}

	if e.cfg.EndAfterAnswer && wait() {
		cb.OnEnd()
	}
}

// Stop halts the running session. Like a browser engine, the stopped session
// still reports its end to the callback.
func (e *Engine) Stop() error {
	e.mu.Lock()
	cancel, done, cb := e.cancel, e.done, e.cb
	e.cancel, e.done, e.cb = nil, nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	cb.OnEnd()
	return nil
}

// Close stops playback and rejects further sessions.
func (e *Engine) Close() error {
	_ = e.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Sessions returns how many listening sessions were started.
func (e *Engine) Sessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions
}
