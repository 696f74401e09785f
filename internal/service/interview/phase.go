package interview

import (
	"fmt"

	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
)

// Phase is the orchestrator's internal state.
//
// Transitions:
//
//	Idle -> Initializing -> AwaitingCapture <-> Capturing
//	Capturing -> Submitting -> AwaitingCapture (next question)
//	Submitting -> FetchingFeedback -> Complete
//	Initializing -> StartFailed, FetchingFeedback -> FeedbackFailed (retryable)
//
// Any phase -> Initializing on restart.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInitializing
	PhaseStartFailed
	PhaseAwaitingCapture
	PhaseCapturing
	PhaseSubmitting
	PhaseFetchingFeedback
	PhaseFeedbackFailed
	PhaseComplete
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseInitializing:
		return "INITIALIZING"
	case PhaseStartFailed:
		return "START_FAILED"
	case PhaseAwaitingCapture:
		return "AWAITING_CAPTURE"
	case PhaseCapturing:
		return "CAPTURING"
	case PhaseSubmitting:
		return "SUBMITTING"
	case PhaseFetchingFeedback:
		return "FETCHING_FEEDBACK"
	case PhaseFeedbackFailed:
		return "FEEDBACK_FAILED"
	case PhaseComplete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", p)
	}
}

// ViewState maps the phase onto the presentation state.
func (p Phase) ViewState() models.ViewState {
	switch p {
	case PhaseAwaitingCapture, PhaseCapturing:
		return models.ViewQuestion
	case PhaseSubmitting, PhaseFetchingFeedback, PhaseFeedbackFailed:
		return models.ViewSubmitting
	case PhaseComplete:
		return models.ViewFinalFeedback
	default:
		return models.ViewAwaitingStart
	}
}

// InFlight reports whether a service call is outstanding.
func (p Phase) InFlight() bool {
	return p == PhaseInitializing || p == PhaseSubmitting || p == PhaseFetchingFeedback
}

// Action names a user action that can be retried after a service failure.
type Action string

const (
	ActionNone     Action = ""
	ActionStart    Action = "start"
	ActionSubmit   Action = "submit"
	ActionFeedback Action = "feedback"
)
