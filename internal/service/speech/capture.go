package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/logging"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/metrics"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/generation"
)

// EventKind identifies a capture notification.
type EventKind int

const (
	// EventTranscript - the combined transcript changed.
	EventTranscript EventKind = iota
	// EventEnded - the engine stopped listening on its own.
	EventEnded
	// EventFailed - the engine reported an error; Err holds a *CaptureError.
	EventFailed
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventTranscript:
		return "TRANSCRIPT"
	case EventEnded:
		return "ENDED"
	case EventFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", k)
	}
}

// Event is delivered to the capture observer.
type Event struct {
	Kind       EventKind
	Generation uint64
	Text       string
	Err        error
}

// Transcript is the accumulated text of one capture session.
type Transcript struct {
	Finalized string
	Interim   string
}

// Combined returns the externally visible transcript: finalized text followed by interim.
func (t Transcript) Combined() string {
	return joinSpace(t.Finalized, t.Interim)
}

// Capture owns a speech engine and turns its callbacks into a transcript.
//
// Every Start issues a new generation; Stop, an autonomous end, or an error
// supersede it. Callbacks carrying a superseded generation are discarded, so
// results that arrive after Stop never reach the transcript or reactivate listening.
type Capture struct {
	engine  Engine
	gens    *generation.Counter
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu         sync.Mutex
	listening  bool
	transcript Transcript
	observer   func(Event)
	cancel     context.CancelFunc
}

// NewCapture wraps engine. A nil engine means the platform has no recognition support.
func NewCapture(engine Engine, m *metrics.Metrics) *Capture {
	name := "none"
	if engine != nil {
		name = engine.Name()
	}
	return &Capture{
		engine:  engine,
		gens:    generation.New(),
		metrics: m,
		logger:  logging.WithEngine("speech-capture", name),
	}
}

// SetObserver registers fn for capture events. fn is never called with the capture lock held.
func (c *Capture) SetObserver(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// HasSupport reports whether a speech engine is available.
func (c *Capture) HasSupport() bool {
	return c.engine != nil
}

// IsListening reports whether a capture session is active.
func (c *Capture) IsListening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Text returns the live combined transcript.
func (c *Capture) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Combined()
}

// Transcript returns the finalized and interim parts separately.
func (c *Capture) Transcript() Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// Generation returns the live capture generation.
func (c *Capture) Generation() uint64 {
	return c.gens.Current()
}

// Start clears the transcript and begins a new listening session.
// Without an engine it does nothing and returns ErrCaptureUnsupported.
func (c *Capture) Start(ctx context.Context) error {
	if c.engine == nil {
		c.logger.Debug().Msg("Capture start ignored: no speech engine")
		return ErrCaptureUnsupported
	}

	c.mu.Lock()
	wasListening := c.listening
	prevCancel := c.cancel
	gen := c.gens.Next()
	c.transcript = Transcript{}
	c.listening = true
	sctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	obs := c.observer
	c.mu.Unlock()

	if wasListening {
		_ = c.engine.Stop()
	}
	if prevCancel != nil {
		prevCancel()
	}

	c.metrics.RecordCaptureStart()
	c.logger.Debug().Uint64("generation", gen).Msg("Capture started")

	if obs != nil {
		obs(Event{Kind: EventTranscript, Generation: gen})
	}

	if err := c.engine.Start(sctx, &binding{c: c, gen: gen}); err != nil {
		ce := AsCaptureError(err)
		c.mu.Lock()
		if c.gens.IsCurrent(gen) {
			c.listening = false
			c.gens.Next()
		}
		c.mu.Unlock()
		cancel()
		c.metrics.RecordCaptureError(string(ce.Kind))
		c.logger.Warn().Err(err).Uint64("generation", gen).Msg("Speech engine failed to start")
		return ce
	}
	return nil
}

// Stop halts listening. Any interim text is frozen into the transcript and
// results still in flight from the engine are discarded.
func (c *Capture) Stop() error {
	if c.engine == nil {
		return nil
	}

	c.mu.Lock()
	wasListening := c.listening
	c.listening = false
	c.gens.Next()
	c.freezeLocked()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if !wasListening {
		return nil
	}

	err := c.engine.Stop()
	if cancel != nil {
		cancel()
	}
	c.metrics.RecordCaptureEnd("stopped")
	c.logger.Debug().Msg("Capture stopped")
	return err
}

// Close stops listening and releases the engine.
func (c *Capture) Close() error {
	if c.engine == nil {
		return nil
	}
	_ = c.Stop()
	return c.engine.Close()
}

func (c *Capture) freezeLocked() {
	c.transcript = Transcript{Finalized: c.transcript.Combined()}
}

// acceptLocked reports whether gen is the live listening session.
func (c *Capture) acceptLocked(gen uint64, source string) bool {
	if c.listening && c.gens.IsCurrent(gen) {
		return true
	}
	c.metrics.RecordStaleDiscarded(source)
	c.logger.Debug().
		Uint64("generation", gen).
		Uint64("current", c.gens.Current()).
		Str("source", source).
		Msg("Stale speech callback discarded")
	return false
}

func (c *Capture) handleResults(gen uint64, results []Result) {
	c.mu.Lock()
	if !c.acceptLocked(gen, "result") {
		c.mu.Unlock()
		return
	}

	interim := ""
	for _, r := range results {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		if r.Final {
			c.transcript.Finalized = joinSpace(c.transcript.Finalized, text)
		} else {
			interim = joinSpace(interim, text)
		}
	}
	c.transcript.Interim = interim
	text := c.transcript.Combined()
	obs := c.observer
	c.mu.Unlock()

	if obs != nil {
		obs(Event{Kind: EventTranscript, Generation: gen, Text: text})
	}
}

func (c *Capture) handleEnd(gen uint64) {
	c.mu.Lock()
	if !c.acceptLocked(gen, "end") {
		c.mu.Unlock()
		return
	}
	c.listening = false
	c.gens.Next()
	c.freezeLocked()
	text := c.transcript.Finalized
	cancel := c.cancel
	c.cancel = nil
	obs := c.observer
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.metrics.RecordCaptureEnd("engine_end")
	c.logger.Debug().Uint64("generation", gen).Msg("Speech engine ended capture")

	if obs != nil {
		obs(Event{Kind: EventEnded, Generation: gen, Text: text})
	}
}

func (c *Capture) handleError(gen uint64, err error) {
	ce := AsCaptureError(err)

	c.mu.Lock()
	if !c.acceptLocked(gen, "error") {
		c.mu.Unlock()
		return
	}
	c.listening = false
	c.gens.Next()
	// interim hypotheses are not trusted after a failure; finalized text is kept
	c.transcript.Interim = ""
	text := c.transcript.Finalized
	cancel := c.cancel
	c.cancel = nil
	obs := c.observer
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.metrics.RecordCaptureEnd("error")
	c.metrics.RecordCaptureError(string(ce.Kind))
	c.logger.Warn().Err(err).Str("kind", string(ce.Kind)).Uint64("generation", gen).Msg("Speech engine error")

	if obs != nil {
		obs(Event{Kind: EventFailed, Generation: gen, Text: text, Err: ce})
	}
}

// binding tags engine callbacks with the generation they were started under.
type binding struct {
	c   *Capture
	gen uint64
}

func (b *binding) OnResults(results []Result) { b.c.handleResults(b.gen, results) }
func (b *binding) OnEnd()                     { b.c.handleEnd(b.gen) }
func (b *binding) OnError(err error)          { b.c.handleError(b.gen, err) }

func joinSpace(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
