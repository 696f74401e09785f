// Package schema validates interview service responses against JSON schemas.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Kind names one of the service responses.
type Kind string

const (
	KindStartInterview Kind = "start_interview"
	KindProcessAnswer  Kind = "process_answer"
	KindGetFeedback    Kind = "get_feedback"
)

// ErrInvalidPayload wraps every validation failure.
var ErrInvalidPayload = errors.New("payload does not match schema")

const startInterviewSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["session_id", "next_question", "total_questions"],
  "properties": {
    "session_id": {"type": "string", "minLength": 1},
    "next_question": {"type": "string", "minLength": 1},
    "total_questions": {"type": "integer", "minimum": 1},
    "current_question": {"type": "integer", "minimum": 0}
  }
}`

const processAnswerSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["is_complete"],
  "properties": {
    "is_complete": {"type": "boolean"},
    "next_question": {"type": "string"},
    "current_question": {"type": "integer", "minimum": 0}
  },
  "if": {"properties": {"is_complete": {"const": false}}},
  "then": {"required": ["next_question"], "properties": {"next_question": {"minLength": 1}}}
}`

const getFeedbackSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["feedback"],
  "properties": {
    "session_id": {"type": "string"},
    "role": {"type": "string"},
    "feedback": {
      "type": "object",
      "required": ["overall_score"],
      "properties": {
        "overall_score": {"type": "number"},
        "sentiment": {"type": "string"},
        "strengths": {"type": "array", "items": {"type": "string"}},
        "improvements": {"type": "array", "items": {"type": "string"}},
        "detailed_feedback": {"type": "string"},
        "final_verdict": {"type": "string"}
      }
    },
    "answers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question_number", "question", "answer"],
        "properties": {
          "question_number": {"type": "integer"},
          "question": {"type": "string"},
          "answer": {"type": "string"}
        }
      }
    }
  }
}`

// Validator holds the compiled response schemas.
type Validator struct {
	schemas map[Kind]*jsonschema.Schema
}

// New compiles the built-in schemas.
func New() (*Validator, error) {
	raw := map[Kind]string{
		KindStartInterview: startInterviewSchema,
		KindProcessAnswer:  processAnswerSchema,
		KindGetFeedback:    getFeedbackSchema,
	}

	v := &Validator{schemas: make(map[Kind]*jsonschema.Schema, len(raw))}
	for kind, src := range raw {
		sch, err := compile(string(kind)+".schema.json", src)
		if err != nil {
			return nil, err
		}
		v.schemas[kind] = sch
	}
	return v, nil
}

// MustNew is New that panics on error; the schemas are static.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

func compile(name, src string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("add %s: %w", name, err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return sch, nil
}

// Validate checks a raw JSON body against the schema for kind.
func (v *Validator) Validate(kind Kind, body []byte) error {
	sch, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("unknown schema kind %q", kind)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, kind, err)
	}

	if err := sch.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s: %s", ErrInvalidPayload, kind, strings.Join(leafErrors(ve), "; "))
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, kind, err)
	}
	return nil
}

func leafErrors(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		return []string{"/" + strings.Join(ve.InstanceLocation, "/") + ": " + ve.Error()}
	}
	var out []string
	for _, c := range ve.Causes {
		out = append(out, leafErrors(c)...)
	}
	return out
}
