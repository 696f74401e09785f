package models

import (
	"errors"
	"testing"
)

func TestParseTone(t *testing.T) {
	tests := []struct {
		input    string
		expected Tone
		wantErr  bool
	}{
		{"professional", ToneProfessional, false},
		{"friendly", ToneFriendly, false},
		{" Strict ", ToneStrict, false},
		{"CASUAL", ToneCasual, false},
		{"", DefaultTone, false},
		{"sarcastic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTone(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTone) {
					t.Errorf("ParseTone(%q) error = %v, want ErrInvalidTone", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTone(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseTone(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeRole(t *testing.T) {
	if got := NormalizeRole("   "); got != DefaultRole {
		t.Errorf("expected default role, got %q", got)
	}
	if got := NormalizeRole(" Data Scientist "); got != "Data Scientist" {
		t.Errorf("expected trimmed role, got %q", got)
	}
}

func TestSession_DisplayStep(t *testing.T) {
	s := Session{CurrentStep: 0, TotalQuestions: 5}
	if s.DisplayStep() != 1 {
		t.Errorf("expected display step 1, got %d", s.DisplayStep())
	}
}

func TestFeedbackRecord_ClampedScore(t *testing.T) {
	tests := []struct {
		score    float64
		expected float64
	}{
		{-1, 0},
		{7.5, 7.5},
		{12, MaxScore},
	}
	for _, tt := range tests {
		got := FeedbackRecord{OverallScore: tt.score}.ClampedScore()
		if got != tt.expected {
			t.Errorf("ClampedScore(%v) = %v, want %v", tt.score, got, tt.expected)
		}
	}
}
