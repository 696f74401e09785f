package interview

import "errors"

var (
	// ErrBusy is returned while a service call is outstanding.
	ErrBusy = errors.New("interview is busy")

	// ErrNotReady is returned when an action does not apply to the current phase.
	ErrNotReady = errors.New("action not available in the current interview state")

	// ErrTranscriptTooShort rejects a transcript before any network call.
	ErrTranscriptTooShort = errors.New("transcript too short to submit")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("interview orchestrator closed")
)
