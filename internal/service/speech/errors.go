package speech

import (
	"errors"
	"fmt"
)

// ErrCaptureUnsupported is returned by Capture.Start when no engine is available.
var ErrCaptureUnsupported = errors.New("speech recognition is not supported")

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	KindPermissionDenied ErrorKind = "permission-denied"
	KindNoSpeech         ErrorKind = "no-speech"
	KindNetwork          ErrorKind = "network"
	KindAborted          ErrorKind = "aborted"
	KindUnknown          ErrorKind = "unknown"
)

// CaptureError is an engine-reported failure. It ends capture but is never fatal.
type CaptureError struct {
	Kind ErrorKind
	Err  error
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("speech capture failed: %s", e.Kind)
	}
	return fmt.Sprintf("speech capture failed: %s: %v", e.Kind, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// AsCaptureError returns err as a *CaptureError, wrapping unknown errors.
func AsCaptureError(err error) *CaptureError {
	if err == nil {
		return nil
	}
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce
	}
	return &CaptureError{Kind: KindUnknown, Err: err}
}
