// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ai_interview_coach"

// Metrics holds all Prometheus metrics for the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Session metrics
	SessionsStarted   prometheus.Counter
	SessionsFailed    prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsRestarted prometheus.Counter

	// Turn metrics
	AnswersSubmitted    prometheus.Counter
	TranscriptsRejected prometheus.Counter

	// Remote service metrics
	ServiceErrors  *prometheus.CounterVec
	ServiceLatency *prometheus.HistogramVec

	// Capture metrics
	CaptureStarts prometheus.Counter
	CaptureEnds   *prometheus.CounterVec
	CaptureErrors *prometheus.CounterVec

	// Callbacks dropped by generation checks
	StaleDiscarded *prometheus.CounterVec

	Announcements prometheus.Counter

	// Event publishing
	PublishTotal   *prometheus.CounterVec
	PublishErrors  *prometheus.CounterVec
	PublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of interview sessions issued by the service",
		}),
		SessionsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_failed_total",
			Help:      "Total number of interview sessions that could not be started",
		}),
		SessionsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Total number of interviews that reached final feedback",
		}),
		SessionsRestarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_restarted_total",
			Help:      "Total number of restarts",
		}),

		AnswersSubmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_submitted_total",
			Help:      "Total number of answers accepted by the service",
		}),
		TranscriptsRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_rejected_total",
			Help:      "Total number of transcripts rejected as too short",
		}),

		ServiceErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_errors_total",
			Help:      "Total number of failed calls to the interview service",
		}, []string{"op"}),
		ServiceLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "service_latency_seconds",
			Help:      "Interview service call latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"op"}),

		CaptureStarts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_starts_total",
			Help:      "Total number of speech capture sessions started",
		}),
		CaptureEnds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_ends_total",
			Help:      "Total number of speech capture sessions ended",
		}, []string{"reason"}),
		CaptureErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_errors_total",
			Help:      "Total number of speech engine errors",
		}, []string{"kind"}),

		StaleDiscarded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_callbacks_discarded_total",
			Help:      "Total number of callbacks discarded because their generation was superseded",
		}, []string{"source"}),

		Announcements: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announcements_total",
			Help:      "Total number of utterances handed to the synthesizer",
		}),

		PublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		PublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		PublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordSessionStarted records a session issued by the service.
func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

// RecordSessionFailed records a start_interview failure.
func (m *Metrics) RecordSessionFailed() {
	if m == nil {
		return
	}
	m.SessionsFailed.Inc()
}

// RecordSessionCompleted records an interview reaching final feedback.
func (m *Metrics) RecordSessionCompleted() {
	if m == nil {
		return
	}
	m.SessionsCompleted.Inc()
}

// RecordRestart records a restart.
func (m *Metrics) RecordRestart() {
	if m == nil {
		return
	}
	m.SessionsRestarted.Inc()
}

// RecordAnswerSubmitted records an answer accepted by the service.
func (m *Metrics) RecordAnswerSubmitted() {
	if m == nil {
		return
	}
	m.AnswersSubmitted.Inc()
}

// RecordTranscriptRejected records a transcript below the usability threshold.
func (m *Metrics) RecordTranscriptRejected() {
	if m == nil {
		return
	}
	m.TranscriptsRejected.Inc()
}

// RecordServiceCall records one interview service call.
func (m *Metrics) RecordServiceCall(op string, err error, latencySeconds float64) {
	if m == nil {
		return
	}
	m.ServiceLatency.WithLabelValues(op).Observe(latencySeconds)
	if err != nil {
		m.ServiceErrors.WithLabelValues(op).Inc()
	}
}

// RecordCaptureStart records a capture session starting.
func (m *Metrics) RecordCaptureStart() {
	if m == nil {
		return
	}
	m.CaptureStarts.Inc()
}

// RecordCaptureEnd records a capture session ending for reason (stopped, engine_end, error).
func (m *Metrics) RecordCaptureEnd(reason string) {
	if m == nil {
		return
	}
	m.CaptureEnds.WithLabelValues(reason).Inc()
}

// RecordCaptureError records a speech engine error.
func (m *Metrics) RecordCaptureError(kind string) {
	if m == nil {
		return
	}
	m.CaptureErrors.WithLabelValues(kind).Inc()
}

// RecordStaleDiscarded records a callback dropped by a generation check.
func (m *Metrics) RecordStaleDiscarded(source string) {
	if m == nil {
		return
	}
	m.StaleDiscarded.WithLabelValues(source).Inc()
}

// RecordAnnouncement records an utterance handed to the synthesizer.
func (m *Metrics) RecordAnnouncement() {
	if m == nil {
		return
	}
	m.Announcements.Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	if m == nil {
		return
	}
	m.PublishTotal.WithLabelValues(topic, eventType).Inc()
	m.PublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.PublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
