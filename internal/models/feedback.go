package models

// MaxScore is the upper bound of FeedbackRecord.OverallScore.
const MaxScore = 10.0

// Sentiment is the overall impression label attached to final feedback.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
)

// FeedbackRecord is the aggregated evaluation produced once an interview completes.
// It is read-only after creation.
type FeedbackRecord struct {
	OverallScore     float64   `json:"overall_score" yaml:"overall_score"`
	Sentiment        Sentiment `json:"sentiment" yaml:"sentiment"`
	Strengths        []string  `json:"strengths" yaml:"strengths"`
	Improvements     []string  `json:"improvements" yaml:"improvements"`
	DetailedFeedback string    `json:"detailed_feedback" yaml:"detailed_feedback"`
	FinalVerdict     string    `json:"final_verdict" yaml:"final_verdict"`
	Answers          []Turn    `json:"answers" yaml:"answers"`
}

// ClampedScore returns OverallScore bounded to [0, MaxScore].
func (f FeedbackRecord) ClampedScore() float64 {
	switch {
	case f.OverallScore < 0:
		return 0
	case f.OverallScore > MaxScore:
		return MaxScore
	default:
		return f.OverallScore
	}
}
