package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordServiceCall(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordServiceCall("process_answer", nil, 0.1)
	m.RecordServiceCall("process_answer", errors.New("boom"), 0.2)

	if got := testutil.ToFloat64(m.ServiceErrors.WithLabelValues("process_answer")); got != 1 {
		t.Errorf("expected 1 service error, got %v", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	// Must not panic.
	m.RecordSessionStarted()
	m.RecordCaptureError("network")
	m.RecordStaleDiscarded("capture")
	m.RecordKafkaPublish("t", "e", nil, 0)
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordSessionStarted()
	m.RecordAnswerSubmitted()
	m.RecordAnswerSubmitted()
	m.RecordTranscriptRejected()
	m.RecordCaptureError("no-speech")

	if got := testutil.ToFloat64(m.SessionsStarted); got != 1 {
		t.Errorf("expected 1 session started, got %v", got)
	}
	if got := testutil.ToFloat64(m.AnswersSubmitted); got != 2 {
		t.Errorf("expected 2 answers submitted, got %v", got)
	}
	if got := testutil.ToFloat64(m.TranscriptsRejected); got != 1 {
		t.Errorf("expected 1 transcript rejected, got %v", got)
	}
	if got := testutil.ToFloat64(m.CaptureErrors.WithLabelValues("no-speech")); got != 1 {
		t.Errorf("expected 1 capture error, got %v", got)
	}
}
