package turn

import (
	"testing"
)

func TestLifecycle_InitialState(t *testing.T) {
	lc := NewLifecycle(0, "Tell me about yourself")

	if lc.State() != StateOpen {
		t.Errorf("expected StateOpen, got %v", lc.State())
	}
	if lc.Step() != 0 {
		t.Errorf("expected step 0, got %d", lc.Step())
	}
	turn := lc.Turn()
	if turn.Number != 1 {
		t.Errorf("expected question number 1, got %d", turn.Number)
	}
	if turn.Question != "Tell me about yourself" {
		t.Errorf("unexpected question %q", turn.Question)
	}
}

func TestLifecycle_BeginSubmit_OnlyOnce(t *testing.T) {
	lc := NewLifecycle(0, "q")

	if err := lc.BeginSubmit("first answer"); err != nil {
		t.Fatalf("first submit: unexpected error: %v", err)
	}
	if err := lc.BeginSubmit("second answer"); err != ErrSubmissionInFlight {
		t.Errorf("second submit: expected ErrSubmissionInFlight, got %v", err)
	}
	if lc.Turn().Answer != "first answer" {
		t.Errorf("expected first answer kept, got %q", lc.Turn().Answer)
	}
}

func TestLifecycle_FullCycle(t *testing.T) {
	lc := NewLifecycle(2, "q3")

	if err := lc.BeginSubmit("answer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc.State() != StateSubmitting {
		t.Errorf("expected StateSubmitting, got %v", lc.State())
	}
	if err := lc.Finalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc.State() != StateFinalized {
		t.Errorf("expected StateFinalized, got %v", lc.State())
	}

	// Finalized turns are immutable.
	if err := lc.BeginSubmit("again"); err != ErrTurnFinalized {
		t.Errorf("expected ErrTurnFinalized, got %v", err)
	}
	if err := lc.Reopen(); err != ErrNotSubmitting {
		t.Errorf("expected ErrNotSubmitting, got %v", err)
	}
	if lc.Abandon() {
		t.Error("expected Abandon to be a no-op on a finalized turn")
	}
	if lc.Turn().Answer != "answer" {
		t.Errorf("expected answer to be unchanged, got %q", lc.Turn().Answer)
	}
}

func TestLifecycle_Reopen_AllowsResubmit(t *testing.T) {
	lc := NewLifecycle(0, "q")

	_ = lc.BeginSubmit("answer")
	if err := lc.Reopen(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc.State() != StateOpen {
		t.Errorf("expected StateOpen after reopen, got %v", lc.State())
	}
	if lc.Turn().Answer != "answer" {
		t.Errorf("expected answer retained after reopen, got %q", lc.Turn().Answer)
	}
	if err := lc.BeginSubmit("answer"); err != nil {
		t.Errorf("expected resubmit to be allowed, got %v", err)
	}
}

func TestLifecycle_Finalize_RequiresSubmission(t *testing.T) {
	lc := NewLifecycle(0, "q")

	if err := lc.Finalize(); err != ErrNotSubmitting {
		t.Errorf("expected ErrNotSubmitting, got %v", err)
	}
}

func TestLifecycle_Abandon(t *testing.T) {
	lc := NewLifecycle(0, "q")
	_ = lc.BeginSubmit("answer")

	if !lc.Abandon() {
		t.Error("expected abandon to succeed from SUBMITTING")
	}
	if lc.Abandon() {
		t.Error("expected second abandon to be a no-op")
	}
	if err := lc.Finalize(); err != ErrTurnAbandoned {
		t.Errorf("expected ErrTurnAbandoned, got %v", err)
	}
	if err := lc.BeginSubmit("x"); err != ErrTurnAbandoned {
		t.Errorf("expected ErrTurnAbandoned, got %v", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateOpen, "OPEN"},
		{StateSubmitting, "SUBMITTING"},
		{StateFinalized, "FINALIZED"},
		{StateAbandoned, "ABANDONED"},
		{State(99), "UNKNOWN(99)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.expected)
		}
	}
}

func TestState_IsTerminal(t *testing.T) {
	if StateOpen.IsTerminal() || StateSubmitting.IsTerminal() {
		t.Error("open/submitting must not be terminal")
	}
	if !StateFinalized.IsTerminal() || !StateAbandoned.IsTerminal() {
		t.Error("finalized/abandoned must be terminal")
	}
}
