package models

// Event types published on the interview lifecycle topics.
const (
	EventSessionStarted   = "interview.session.started"
	EventAnswerSubmitted  = "interview.answer.submitted"
	EventSessionCompleted = "interview.session.completed"
)

// SessionStarted is emitted once the service has issued a session.
type SessionStarted struct {
	EventType      string `json:"eventType"`
	SessionID      string `json:"sessionId"`
	Role           string `json:"role"`
	Tone           Tone   `json:"tone"`
	TotalQuestions int    `json:"totalQuestions"`
	Timestamp      int64  `json:"timestamp"`
}

// AnswerSubmitted is emitted after the service accepted an answer.
type AnswerSubmitted struct {
	EventType      string `json:"eventType"`
	SessionID      string `json:"sessionId"`
	Step           int    `json:"step"`
	QuestionNumber int    `json:"questionNumber"`
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	Timestamp      int64  `json:"timestamp"`
}

// SessionCompleted is emitted when final feedback has been received.
type SessionCompleted struct {
	EventType    string    `json:"eventType"`
	SessionID    string    `json:"sessionId"`
	Role         string    `json:"role"`
	OverallScore float64   `json:"overallScore"`
	Sentiment    Sentiment `json:"sentiment"`
	Answers      int       `json:"answers"`
	Timestamp    int64     `json:"timestamp"`
}
