// Package models defines the data structures shared by the interview core.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultRole is used when the candidate leaves the role blank.
const DefaultRole = "Software Engineer"

// Tone selects the interviewer's conversational style.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneStrict       Tone = "strict"
	ToneCasual       Tone = "casual"
)

// DefaultTone is used when no tone is supplied.
const DefaultTone = ToneProfessional

// ErrInvalidTone is returned by ParseTone for values outside the fixed set.
var ErrInvalidTone = errors.New("invalid interview tone")

// Tones lists the accepted tone values in display order.
func Tones() []Tone {
	return []Tone{ToneProfessional, ToneFriendly, ToneStrict, ToneCasual}
}

// ParseTone validates a tone value. An empty value yields DefaultTone.
func ParseTone(s string) (Tone, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return DefaultTone, nil
	}
	for _, t := range Tones() {
		if string(t) == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTone, s)
}

// NormalizeRole trims the role and substitutes DefaultRole when blank.
func NormalizeRole(role string) string {
	if r := strings.TrimSpace(role); r != "" {
		return r
	}
	return DefaultRole
}

// Session is the server-assigned identity of one interview plus its progress.
// CurrentStep is 0-based and only moves forward.
type Session struct {
	ID             string `json:"sessionId"`
	Role           string `json:"role"`
	Tone           Tone   `json:"tone"`
	TotalQuestions int    `json:"totalQuestions"`
	CurrentStep    int    `json:"currentStep"`
}

// DisplayStep returns the 1-based question number shown to the candidate.
func (s Session) DisplayStep() int {
	return s.CurrentStep + 1
}

// Turn is one question and the answer given to it.
// Number is the 1-based question number.
type Turn struct {
	Number   int    `json:"question_number" yaml:"question_number"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}
