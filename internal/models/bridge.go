package models

// Commands pushed to the page hosting the browser speech engine and synthesizer.
const (
	CommandRecognitionStart = "recognition.start"
	CommandRecognitionStop  = "recognition.stop"
	CommandSpeechSpeak      = "speech.speak"
	CommandSpeechCancel     = "speech.cancel"
)

// Messages the page sends back.
const (
	MessageRecognitionResult = "recognition.result"
	MessageRecognitionEnd    = "recognition.end"
	MessageRecognitionError  = "recognition.error"
)

// BridgeCommand is a server-to-page instruction.
// Session tags a recognition session; the page echoes it on every message so
// results from an earlier session can be told apart.
type BridgeCommand struct {
	Type           string  `json:"type"`
	Session        uint64  `json:"session,omitempty"`
	Lang           string  `json:"lang,omitempty"`
	Continuous     bool    `json:"continuous,omitempty"`
	InterimResults bool    `json:"interimResults,omitempty"`
	Text           string  `json:"text,omitempty"`
	Rate           float64 `json:"rate,omitempty"`
	Pitch          float64 `json:"pitch,omitempty"`
}

// BridgeResult is one recognition alternative reported by the page.
type BridgeResult struct {
	Transcript string  `json:"transcript"`
	IsFinal    bool    `json:"isFinal"`
	Confidence float64 `json:"confidence,omitempty"`
}

// BridgeMessage is a page-to-server notification.
type BridgeMessage struct {
	Type    string         `json:"type"`
	Session uint64         `json:"session"`
	Results []BridgeResult `json:"results,omitempty"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
}
