// Package voice reads questions aloud through a text-to-speech synthesizer.
package voice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/logging"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/metrics"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/markup"
)

// Utterance is one piece of text to be spoken.
type Utterance struct {
	Text  string
	Lang  string
	Rate  float64
	Pitch float64
}

// Synthesizer is a platform text-to-speech facility.
type Synthesizer interface {
	Name() string
	// Speak queues u for playback.
	Speak(ctx context.Context, u Utterance) error
	// Cancel silences current and queued speech.
	Cancel() error
}

// Config holds the utterance defaults.
type Config struct {
	Lang  string
	Rate  float64
	Pitch float64
}

// DefaultConfig returns en-US at normal rate and pitch.
func DefaultConfig() Config {
	return Config{Lang: "en-US", Rate: 1, Pitch: 1}
}

// Announcer speaks one utterance at a time: every Speak cancels what is playing first.
type Announcer struct {
	synth   Synthesizer
	cfg     Config
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewAnnouncer creates an announcer. A nil synthesizer makes every call a no-op.
func NewAnnouncer(synth Synthesizer, cfg Config, m *metrics.Metrics) *Announcer {
	name := "none"
	if synth != nil {
		name = synth.Name()
	}
	return &Announcer{
		synth:   synth,
		cfg:     cfg,
		metrics: m,
		logger:  logging.WithEngine("voice-announcer", name),
	}
}

// Available reports whether speech output is possible.
func (a *Announcer) Available() bool {
	return a.synth != nil
}

// Speak cancels any ongoing speech and then speaks text with markup removed.
// Failures are logged and never returned to the caller's control flow.
func (a *Announcer) Speak(ctx context.Context, text string) {
	if a.synth == nil {
		return
	}

	plain := markup.PlainText(text)
	if plain == "" {
		return
	}

	if err := a.synth.Cancel(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to cancel ongoing speech")
	}

	err := a.synth.Speak(ctx, Utterance{Text: plain, Lang: a.cfg.Lang, Rate: a.cfg.Rate, Pitch: a.cfg.Pitch})
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to speak")
		return
	}
	a.metrics.RecordAnnouncement()
}

// Cancel silences any ongoing speech.
func (a *Announcer) Cancel() {
	if a.synth == nil {
		return
	}
	if err := a.synth.Cancel(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to cancel ongoing speech")
	}
}
