package models

// ViewState drives which presentation affordances are enabled.
type ViewState string

const (
	ViewAwaitingStart ViewState = "awaiting-start"
	ViewQuestion      ViewState = "question"
	ViewSubmitting    ViewState = "submitting"
	ViewFinalFeedback ViewState = "final-feedback"
)
