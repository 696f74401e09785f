// Package turn provides the lifecycle state machine for a single interview turn.
package turn

import (
	"errors"
	"fmt"
	"sync"

	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
)

// State represents the lifecycle state of a turn.
type State int

const (
	// StateOpen - question asked, answer not yet submitted.
	StateOpen State = iota
	// StateSubmitting - answer handed to the service, response outstanding.
	StateSubmitting
	// StateFinalized - service accepted the answer. Terminal, immutable.
	StateFinalized
	// StateAbandoned - session discarded before the answer was accepted. Terminal.
	StateAbandoned
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateSubmitting:
		return "SUBMITTING"
	case StateFinalized:
		return "FINALIZED"
	case StateAbandoned:
		return "ABANDONED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal (FINALIZED or ABANDONED).
func (s State) IsTerminal() bool {
	return s == StateFinalized || s == StateAbandoned
}

// Errors for invalid state transitions.
var (
	ErrSubmissionInFlight = errors.New("submission already in flight for this turn")
	ErrTurnFinalized      = errors.New("turn already finalized")
	ErrTurnAbandoned      = errors.New("turn abandoned")
	ErrNotSubmitting      = errors.New("turn has no submission in flight")
)

// Lifecycle manages the state machine for a single turn.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	OPEN ──BeginSubmit()──→ SUBMITTING ──Finalize()──→ FINALIZED
//	  ↑                         │
//	  └────────Reopen()─────────┘
//
//	any non-terminal ──Abandon()──→ ABANDONED
//
// Rules:
//   - At most one submission is in flight at a time.
//   - A finalized turn never changes again.
type Lifecycle struct {
	mu    sync.RWMutex
	step  int
	turn  models.Turn
	state State
}

// NewLifecycle opens a turn for the question asked at the 0-based step.
func NewLifecycle(step int, question string) *Lifecycle {
	return &Lifecycle{
		step: step,
		turn: models.Turn{
			Number:   step + 1,
			Question: question,
		},
		state: StateOpen,
	}
}

// Step returns the 0-based step index of the turn.
func (l *Lifecycle) Step() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.step
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Turn returns a copy of the turn's data.
func (l *Lifecycle) Turn() models.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.turn
}

// BeginSubmit records the answer and moves OPEN → SUBMITTING.
func (l *Lifecycle) BeginSubmit(answer string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateOpen:
		l.turn.Answer = answer
		l.state = StateSubmitting
		return nil
	case StateSubmitting:
		return ErrSubmissionInFlight
	case StateFinalized:
		return ErrTurnFinalized
	case StateAbandoned:
		return ErrTurnAbandoned
	default:
		return fmt.Errorf("unexpected state: %v", l.state)
	}
}

// Finalize moves SUBMITTING → FINALIZED once the service accepted the answer.
func (l *Lifecycle) Finalize() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateSubmitting:
		l.state = StateFinalized
		return nil
	case StateFinalized:
		return ErrTurnFinalized
	case StateAbandoned:
		return ErrTurnAbandoned
	default:
		return ErrNotSubmitting
	}
}

// Reopen moves SUBMITTING → OPEN after a failed submission.
// The answer is kept so it can be resubmitted.
func (l *Lifecycle) Reopen() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateSubmitting {
		return ErrNotSubmitting
	}
	l.state = StateOpen
	return nil
}

// Abandon moves any non-terminal turn to ABANDONED.
// Returns false if the turn was already terminal.
func (l *Lifecycle) Abandon() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateAbandoned
	return true
}
