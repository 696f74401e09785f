package voice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/logging"
)

// LogSynthesizer writes utterances to the log instead of an audio device.
type LogSynthesizer struct {
	logger zerolog.Logger
}

// NewLogSynthesizer creates a log-only synthesizer.
func NewLogSynthesizer() *LogSynthesizer {
	return &LogSynthesizer{logger: logging.WithComponent("tts-log")}
}

func (s *LogSynthesizer) Name() string { return "log" }

func (s *LogSynthesizer) Speak(ctx context.Context, u Utterance) error {
	s.logger.Info().
		Str("text", u.Text).
		Str("lang", u.Lang).
		Float64("rate", u.Rate).
		Float64("pitch", u.Pitch).
		Msg("Speaking")
	return nil
}

func (s *LogSynthesizer) Cancel() error {
	s.logger.Debug().Msg("Speech cancelled")
	return nil
}
