package client

import (
	"errors"
	"fmt"
)

// ErrServiceUnavailable is matched (via errors.Is) by every transport, status or
// payload failure returned from Client.
var ErrServiceUnavailable = errors.New("interview service unavailable")

// ServiceError describes a failed call to the interview service.
type ServiceError struct {
	Op         string // start_interview, process_answer, get_feedback
	StatusCode int    // 0 when the request never got a response
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", ErrServiceUnavailable, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrServiceUnavailable, e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is reports ServiceError as ErrServiceUnavailable.
func (e *ServiceError) Is(target error) bool {
	return target == ErrServiceUnavailable
}
