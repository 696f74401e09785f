package voice

import (
	"context"

	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
)

// CommandSender pushes commands to the page hosting the browser synthesizer.
type CommandSender interface {
	Send(cmd models.BridgeCommand) error
}

// BridgeSynthesizer speaks through the browser's speech synthesis.
type BridgeSynthesizer struct {
	sender CommandSender
}

func NewBridgeSynthesizer(sender CommandSender) *BridgeSynthesizer {
	return &BridgeSynthesizer{sender: sender}
}

func (s *BridgeSynthesizer) Name() string { return "bridge" }

func (s *BridgeSynthesizer) Speak(ctx context.Context, u Utterance) error {
	return s.sender.Send(models.BridgeCommand{
		Type:  models.CommandSpeechSpeak,
		Text:  u.Text,
		Lang:  u.Lang,
		Rate:  u.Rate,
		Pitch: u.Pitch,
	})
}

func (s *BridgeSynthesizer) Cancel() error {
	return s.sender.Send(models.BridgeCommand{Type: models.CommandSpeechCancel})
}
