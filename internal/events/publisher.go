// Package events publishes interview lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/metrics"
)

// Publisher publishes session events and answer events to separate Kafka topics.
type Publisher struct {
	writerSessions *kafka.Writer
	writerAnswers  *kafka.Writer
	principal      string
	topicSessions  string
	topicAnswers   string
	enabled        bool
	metrics        *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicSessions string
	TopicAnswers  string
	Principal     string
	Enabled       bool
	Metrics       *metrics.Metrics // nil uses metrics.DefaultMetrics
}

// New creates a Kafka event publisher. Without brokers it runs in log-only mode.
func New(cfg *Config) *Publisher {
	// Handle nil config case
	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: metrics.DefaultMetrics,
		}
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:     cfg.Principal,
			topicSessions: cfg.TopicSessions,
			topicAnswers:  cfg.TopicAnswers,
			enabled:       false,
			metrics:       m,
		}
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicSessions", cfg.TopicSessions).
		Str("topicAnswers", cfg.TopicAnswers).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		// keyed by session id so one interview's events stay ordered on a partition
		writerSessions: newWriter(cfg.TopicSessions),
		writerAnswers:  newWriter(cfg.TopicAnswers),
		principal:      cfg.Principal,
		topicSessions:  cfg.TopicSessions,
		topicAnswers:   cfg.TopicAnswers,
		enabled:        true,
		metrics:        m,
	}
}

// PublishSessionStarted publishes to the sessions topic.
func (p *Publisher) PublishSessionStarted(ctx context.Context, ev models.SessionStarted) error {
	return p.publish(ctx, p.writerSessions, p.topicSessions, ev.EventType, ev.SessionID, ev)
}

// PublishAnswerSubmitted publishes to the answers topic.
func (p *Publisher) PublishAnswerSubmitted(ctx context.Context, ev models.AnswerSubmitted) error {
	return p.publish(ctx, p.writerAnswers, p.topicAnswers, ev.EventType, ev.SessionID, ev)
}

// PublishSessionCompleted publishes to the sessions topic.
func (p *Publisher) PublishSessionCompleted(ctx context.Context, ev models.SessionCompleted) error {
	return p.publish(ctx, p.writerSessions, p.topicSessions, ev.EventType, ev.SessionID, ev)
}

// publish writes one JSON event to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerSessions != nil {
		if e := p.writerSessions.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing sessions writer")
			err = e
		}
	}
	if p.writerAnswers != nil {
		if e := p.writerAnswers.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing answers writer")
			err = e
		}
	}
	return err
}
