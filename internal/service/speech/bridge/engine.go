// Package bridge runs recognition in a connected browser page. Start and Stop
// are pushed to the page as commands; the page's results come back through Deliver.
package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/logging"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/generation"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech"
)

// ErrNoPage is returned by a Sender when no page is connected.
var ErrNoPage = errors.New("no page connected")

// Sender pushes commands to the connected page.
type Sender interface {
	Send(cmd models.BridgeCommand) error
}

// Engine implements speech.Engine on top of a browser speech engine.
type Engine struct {
	sender   Sender
	lang     string
	sessions *generation.Counter
	logger   zerolog.Logger

	mu sync.Mutex
	cb speech.Callback
}

// New creates a bridge engine recognizing lang (e.g. "en-US").
func New(sender Sender, lang string) *Engine {
	return &Engine{
		sender:   sender,
		lang:     lang,
		sessions: generation.New(),
		logger:   logging.WithEngine("stt-bridge", "bridge"),
	}
}

// Name implements speech.Engine.
func (e *Engine) Name() string { return "bridge" }

// Start asks the page to begin continuous recognition with interim results.
func (e *Engine) Start(ctx context.Context, cb speech.Callback) error {
	e.mu.Lock()
	session := e.sessions.Next()
	e.cb = cb
	e.mu.Unlock()

	err := e.sender.Send(models.BridgeCommand{
		Type:           models.CommandRecognitionStart,
		Session:        session,
		Lang:           e.lang,
		Continuous:     true,
		InterimResults: true,
	})
	if err != nil {
		e.mu.Lock()
		if e.sessions.IsCurrent(session) {
			e.cb = nil
		}
		e.mu.Unlock()
		if errors.Is(err, ErrNoPage) {
			return &speech.CaptureError{Kind: speech.KindAborted, Err: err}
		}
		return &speech.CaptureError{Kind: speech.KindNetwork, Err: err}
	}
	return nil
}

// Stop asks the page to halt recognition. Messages for the stopped session are dropped.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if e.cb == nil {
		e.mu.Unlock()
		return nil
	}
	e.cb = nil
	session := e.sessions.Current()
	e.sessions.Next()
	e.mu.Unlock()

	return e.sender.Send(models.BridgeCommand{Type: models.CommandRecognitionStop, Session: session})
}

// Close stops recognition.
func (e *Engine) Close() error {
	return e.Stop()
}

// Deliver routes a page message to the live session's callback.
// It reports whether the message was accepted.
func (e *Engine) Deliver(msg models.BridgeMessage) bool {
	e.mu.Lock()
	cb := e.cb
	live := cb != nil && e.sessions.IsCurrent(msg.Session)
	if live && (msg.Type == models.MessageRecognitionEnd || msg.Type == models.MessageRecognitionError) {
		e.cb = nil
	}
	e.mu.Unlock()

	if !live {
		e.logger.Debug().Str("type", msg.Type).Uint64("session", msg.Session).Msg("Dropping message for inactive recognition session")
		return false
	}

	switch msg.Type {
	case models.MessageRecognitionResult:
		results := make([]speech.Result, 0, len(msg.Results))
		for _, r := range msg.Results {
			results = append(results, speech.Result{Text: r.Transcript, Final: r.IsFinal, Confidence: r.Confidence})
		}
		cb.OnResults(results)
	case models.MessageRecognitionEnd:
		cb.OnEnd()
	case models.MessageRecognitionError:
		cb.OnError(&speech.CaptureError{Kind: ErrorKind(msg.Error), Err: errors.New(describe(msg))})
	default:
		e.logger.Warn().Str("type", msg.Type).Msg("Unknown bridge message")
		return false
	}
	return true
}

// ErrorKind maps a browser SpeechRecognitionErrorEvent.error code to a kind.
func ErrorKind(code string) speech.ErrorKind {
	switch code {
	case "not-allowed", "service-not-allowed":
		return speech.KindPermissionDenied
	case "no-speech":
		return speech.KindNoSpeech
	case "network":
		return speech.KindNetwork
	case "aborted":
		return speech.KindAborted
	default:
		return speech.KindUnknown
	}
}

func describe(msg models.BridgeMessage) string {
	if msg.Message != "" {
		return msg.Error + ": " + msg.Message
	}
	return msg.Error
}
