package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

// ErrNoBrokers is returned by Tail when no brokers are configured.
var ErrNoBrokers = errors.New("no kafka brokers configured")

// Event is a lifecycle event read back from a topic.
type Event struct {
	Topic   string
	Type    string
	Key     string
	Time    time.Time
	Payload json.RawMessage
}

// TailConfig selects what Tail reads.
type TailConfig struct {
	Brokers []string
	Topics  []string
	// Since rewinds each topic by this much before following it.
	Since time.Duration
	// RetryDelay is the pause after a read error. Zero means one second.
	RetryDelay time.Duration
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Tail follows partition 0 of every topic until ctx is cancelled and calls fn
// for each event. Calls to fn are serialized.
func Tail(ctx context.Context, cfg TailConfig, fn func(Event)) error {
	if len(cfg.Brokers) == 0 {
		return ErrNoBrokers
	}

	var mu sync.Mutex
	deliver := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		fn(ev)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range cfg.Topics {
		topic := topic
		// Partition reader without a consumer group, so tailing never moves committed offsets.
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:   cfg.Brokers,
			Topic:     topic,
			Partition: 0,
			MinBytes:  1,
			MaxBytes:  10e6,
		})

		log.Info().Str("topic", topic).Dur("since", cfg.Since).Msg("Tailing Kafka topic")
		g.Go(func() error {
			defer reader.Close()
			if err := position(gctx, reader, cfg.Since); err != nil {
				return fmt.Errorf("positioning %s: %w", topic, err)
			}
			return readLoop(gctx, topic, reader, cfg.RetryDelay, deliver)
		})
	}
	return g.Wait()
}

// offsetSetter is the part of *kafka.Reader used to pick the starting offset.
type offsetSetter interface {
	SetOffset(offset int64) error
	SetOffsetAt(ctx context.Context, t time.Time) error
}

// position rewinds reader to now-since. Partition readers start at the first
// offset, so with no rewind, or when the rewind fails, it moves to the end.
func position(ctx context.Context, reader offsetSetter, since time.Duration) error {
	if since > 0 {
		err := reader.SetOffsetAt(ctx, time.Now().Add(-since))
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Dur("since", since).Msg("Failed to rewind topic; following from the end")
	}
	return reader.SetOffset(kafka.LastOffset)
}

func readLoop(ctx context.Context, topic string, reader messageReader, retry time.Duration, fn func(Event)) error {
	if retry <= 0 {
		retry = time.Second
	}
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Str("topic", topic).Msg("Kafka read error")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retry):
			}
			continue
		}

		ev, err := decodeMessage(topic, msg)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Int64("offset", msg.Offset).Msg("Skipping undecodable event")
			continue
		}
		fn(ev)
	}
}

// decodeMessage reads the event type from the eventType header, falling back
// to the payload's own eventType field.
func decodeMessage(topic string, msg kafka.Message) (Event, error) {
	if !json.Valid(msg.Value) {
		return Event{}, errors.New("payload is not JSON")
	}

	ev := Event{
		Topic:   topic,
		Key:     string(msg.Key),
		Time:    msg.Time,
		Payload: json.RawMessage(msg.Value),
	}
	for _, h := range msg.Headers {
		if h.Key == "eventType" {
			ev.Type = string(h.Value)
			break
		}
	}
	if ev.Type == "" {
		var probe struct {
			EventType string `json:"eventType"`
		}
		if err := json.Unmarshal(msg.Value, &probe); err == nil {
			ev.Type = probe.EventType
		}
	}
	return ev, nil
}
