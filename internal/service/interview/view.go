package interview

import "github.com/AhmedIzaan/ai-interview-coach/internal/models"

// View is a consistent snapshot of the interview for presentation.
// Feedback is set only in the final-feedback state.
type View struct {
	State                 models.ViewState       `json:"state"`
	Phase                 string                 `json:"phase"`
	SessionID             string                 `json:"sessionId,omitempty"`
	Role                  string                 `json:"role,omitempty"`
	Tone                  models.Tone            `json:"tone,omitempty"`
	Question              string                 `json:"question,omitempty"`
	QuestionNumber        int                    `json:"questionNumber,omitempty"`
	TotalQuestions        int                    `json:"totalQuestions,omitempty"`
	Transcript            string                 `json:"transcript"`
	IsListening           bool                   `json:"isListening"`
	HasRecognitionSupport bool                   `json:"hasRecognitionSupport"`
	Busy                  bool                   `json:"busy"`
	Error                 string                 `json:"error,omitempty"`
	CanRetry              bool                   `json:"canRetry"`
	Feedback              *models.FeedbackRecord `json:"feedback,omitempty"`
}
