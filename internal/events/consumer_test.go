package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

// testReader replays queued messages and errors, then blocks until cancelled.
type testReader struct {
	mu    sync.Mutex
	queue []any
	reads int
}

func (r *testReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	r.reads++
	if len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		if err, ok := next.(error); ok {
			return kafka.Message{}, err
		}
		return next.(kafka.Message), nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *testReader) Close() error { return nil }

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name     string
		msg      kafka.Message
		wantType string
		wantErr  bool
	}{
		{
			name: "type from header",
			msg: kafka.Message{
				Key:     []byte("abc"),
				Value:   []byte(`{"sessionId":"abc"}`),
				Headers: []kafka.Header{{Key: "principal", Value: []byte("svc")}, {Key: "eventType", Value: []byte("interview.session.started")}},
			},
			wantType: "interview.session.started",
		},
		{
			name:     "type from payload",
			msg:      kafka.Message{Value: []byte(`{"eventType":"interview.answer.submitted","step":0}`)},
			wantType: "interview.answer.submitted",
		},
		{
			name:    "not json",
			msg:     kafka.Message{Value: []byte("plain text")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeMessage("interview.sessions", tt.msg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", ev.Type, tt.wantType)
			}
			if ev.Topic != "interview.sessions" {
				t.Errorf("unexpected topic %q", ev.Topic)
			}
		})
	}
}

func TestReadLoop_DeliversAndRetries(t *testing.T) {
	reader := &testReader{queue: []any{
		kafka.Message{Key: []byte("abc"), Value: []byte(`{"eventType":"interview.session.started"}`)},
		errors.New("broker unavailable"),
		kafka.Message{Value: []byte("garbage")},
		kafka.Message{Key: []byte("abc"), Value: []byte(`{"eventType":"interview.session.completed"}`)},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	var got []Event
	done := make(chan error, 1)
	go func() {
		done <- readLoop(ctx, "interview.sessions", reader, time.Millisecond, func(ev Event) {
			got = append(got, ev)
			if len(got) == 2 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("readLoop returned %v", err)
		}
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("readLoop did not stop after cancel")
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Type != "interview.session.started" || got[1].Type != "interview.session.completed" {
		t.Errorf("unexpected events %+v", got)
	}
	if got[0].Key != "abc" {
		t.Errorf("expected key abc, got %q", got[0].Key)
	}
}

func TestReadLoop_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := readLoop(ctx, "t", &testReader{}, time.Millisecond, func(Event) {}); err != nil {
		t.Errorf("expected nil on cancel, got %v", err)
	}
}

func TestTail_RequiresBrokers(t *testing.T) {
	err := Tail(context.Background(), TailConfig{Topics: []string{"t"}}, func(Event) {})
	if !errors.Is(err, ErrNoBrokers) {
		t.Errorf("expected ErrNoBrokers, got %v", err)
	}
}

// testOffsets records how a reader was positioned.
type testOffsets struct {
	rewindErr error
	rewound   bool
	offsets   []int64
}

func (r *testOffsets) SetOffset(offset int64) error {
	r.offsets = append(r.offsets, offset)
	return nil
}

func (r *testOffsets) SetOffsetAt(ctx context.Context, t time.Time) error {
	if r.rewindErr != nil {
		return r.rewindErr
	}
	r.rewound = true
	return nil
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name        string
		since       time.Duration
		rewindErr   error
		wantRewound bool
		wantEnd     bool
	}{
		{name: "rewinds", since: time.Hour, wantRewound: true},
		{name: "no rewind follows from the end", since: 0, wantEnd: true},
		{name: "failed rewind follows from the end", since: time.Hour, rewindErr: errors.New("offsets unavailable"), wantEnd: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &testOffsets{rewindErr: tt.rewindErr}
			if err := position(context.Background(), reader, tt.since); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reader.rewound != tt.wantRewound {
				t.Errorf("rewound = %v, want %v", reader.rewound, tt.wantRewound)
			}
			atEnd := len(reader.offsets) == 1 && reader.offsets[0] == kafka.LastOffset
			if atEnd != tt.wantEnd {
				t.Errorf("offsets = %v, want end-of-topic %v", reader.offsets, tt.wantEnd)
			}
		})
	}
}
