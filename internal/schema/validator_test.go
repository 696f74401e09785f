package schema

import (
	"errors"
	"testing"
)

func TestValidator_Validate(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name    string
		kind    Kind
		body    string
		wantErr bool
	}{
		{"start ok", KindStartInterview, `{"session_id":"abc","next_question":"Tell me about yourself","total_questions":5,"current_question":0}`, false},
		{"start missing session", KindStartInterview, `{"next_question":"q","total_questions":5}`, true},
		{"start zero questions", KindStartInterview, `{"session_id":"abc","next_question":"q","total_questions":0}`, true},
		{"answer next", KindProcessAnswer, `{"is_complete":false,"next_question":"Describe a project","current_question":1}`, false},
		{"answer complete", KindProcessAnswer, `{"is_complete":true}`, false},
		{"answer incomplete without question", KindProcessAnswer, `{"is_complete":false}`, true},
		{"answer wrong type", KindProcessAnswer, `{"is_complete":"no"}`, true},
		{"feedback ok", KindGetFeedback, `{"session_id":"abc","role":"r","feedback":{"overall_score":7.5,"sentiment":"POSITIVE","strengths":["a"],"improvements":[],"detailed_feedback":"d","final_verdict":"v"},"answers":[{"question_number":1,"question":"q","answer":"a"}]}`, false},
		{"feedback missing score", KindGetFeedback, `{"feedback":{"sentiment":"POSITIVE"}}`, true},
		{"not json", KindGetFeedback, `<html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.kind, []byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Errorf("expected ErrInvalidPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidator_UnknownKind(t *testing.T) {
	v := MustNew()
	if err := v.Validate("nope", []byte(`{}`)); err == nil {
		t.Error("expected error for unknown kind")
	}
}
