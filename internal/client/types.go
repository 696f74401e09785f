package client

import "github.com/AhmedIzaan/ai-interview-coach/internal/models"

// StartResult is the outcome of starting an interview.
type StartResult struct {
	SessionID       string
	FirstQuestion   string
	TotalQuestions  int
	CurrentQuestion int
}

// SubmitRequest carries one answer for one step.
type SubmitRequest struct {
	SessionID        string
	Step             int
	Role             string
	Tone             models.Tone
	PreviousQuestion string
	Answer           string
}

// SubmitResult is the service's reply to an answer.
// NextStep carries current_question and is nil when the service omitted it.
// The orchestrator does not take its step from NextStep: it counts answered
// turns itself and only logs a warning when NextStep disagrees.
type SubmitResult struct {
	IsComplete   bool
	NextQuestion string
	NextStep     *int
}

// FeedbackResult is the final evaluation of a session.
type FeedbackResult struct {
	SessionID string
	Role      string
	Record    models.FeedbackRecord
}

// wire shapes

type startRequest struct {
	Role string `json:"role"`
	Tone string `json:"tone"`
}

type questionResponse struct {
	SessionID       string `json:"session_id"`
	NextQuestion    string `json:"next_question"`
	TotalQuestions  int    `json:"total_questions"`
	CurrentQuestion *int   `json:"current_question"`
	IsComplete      bool   `json:"is_complete"`
}

type answerRequest struct {
	Answer           string `json:"answer"`
	Step             int    `json:"step"`
	Role             string `json:"role"`
	Tone             string `json:"tone"`
	SessionID        string `json:"session_id"`
	PreviousQuestion string `json:"previous_question"`
}

type feedbackResponse struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Feedback  struct {
		OverallScore     float64          `json:"overall_score"`
		Sentiment        models.Sentiment `json:"sentiment"`
		Strengths        []string         `json:"strengths"`
		Improvements     []string         `json:"improvements"`
		DetailedFeedback string           `json:"detailed_feedback"`
		FinalVerdict     string           `json:"final_verdict"`
	} `json:"feedback"`
	Answers []models.Turn `json:"answers"`
}
