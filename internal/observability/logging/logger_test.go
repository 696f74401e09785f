package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_FallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "not-a-level", Format: "json", Output: &buf})

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("expected info level, got %s", zerolog.GlobalLevel())
	}
}

func TestWithSession_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	l := WithSession("interview", "abc", "Data Scientist", "friendly")
	l.Info().Msg("hello")

	out := buf.String()
	for _, want := range []string{`"sessionId":"abc"`, `"role":"Data Scientist"`, `"tone":"friendly"`, `"component":"interview"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in log output, got %s", want, out)
		}
	}
}
