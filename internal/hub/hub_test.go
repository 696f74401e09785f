package hub

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech/bridge"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestSend_NoPage(t *testing.T) {
	h := New()
	err := h.Send(models.BridgeCommand{Type: models.CommandRecognitionStart})
	assert.ErrorIs(t, err, bridge.ErrNoPage)
}

func TestSend_DeliversCommand(t *testing.T) {
	h, srv := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, h.Send(models.BridgeCommand{Type: models.CommandSpeechSpeak, Text: "Tell me about yourself", Rate: 1}))

	var cmd models.BridgeCommand
	readJSON(t, conn, &cmd)
	assert.Equal(t, models.CommandSpeechSpeak, cmd.Type)
	assert.Equal(t, "Tell me about yourself", cmd.Text)
}

func TestConnect_SendsSnapshotThenViews(t *testing.T) {
	h, srv := startHub(t)
	h.OnConnect(func() any { return map[string]string{"state": "awaiting-start"} })

	conn := dial(t, srv)

	var first struct {
		Type string            `json:"type"`
		View map[string]string `json:"view"`
	}
	readJSON(t, conn, &first)
	assert.Equal(t, TypeView, first.Type)
	assert.Equal(t, "awaiting-start", first.View["state"])

	h.PublishView(map[string]string{"state": "question"})

	var next struct {
		Type string            `json:"type"`
		View map[string]string `json:"view"`
	}
	readJSON(t, conn, &next)
	assert.Equal(t, "question", next.View["state"])
}

func TestConnect_SnapshotTakenAfterRegistration(t *testing.T) {
	h, srv := startHub(t)
	seen := make(chan int, 1)
	h.OnConnect(func() any {
		seen <- h.ClientCount()
		return map[string]string{"state": "submitting"}
	})

	conn := dial(t, srv)
	var first struct {
		Type string            `json:"type"`
		View map[string]string `json:"view"`
	}
	readJSON(t, conn, &first)

	// a view published from here on reaches the page
	assert.Equal(t, 1, <-seen)
}

// bridgeCapture wires a capture over the bridge engine to the hub the way the app does.
func bridgeCapture(t *testing.T, h *Hub) *speech.Capture {
	t.Helper()
	engine := bridge.New(h, "en-US")
	h.OnMessage(func(msg models.BridgeMessage) { engine.Deliver(msg) })
	capture := speech.NewCapture(engine, nil)
	t.Cleanup(func() { _ = capture.Close() })
	return capture
}

func finalResult(session uint64, text string) models.BridgeMessage {
	return models.BridgeMessage{
		Type:    models.MessageRecognitionResult,
		Session: session,
		Results: []models.BridgeResult{{Transcript: text, IsFinal: true}},
	}
}

func TestRecognition_BoundToOnePage(t *testing.T) {
	h, srv := startHub(t)
	capture := bridgeCapture(t, h)

	older := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	newer := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, capture.Start(context.Background()))

	var start models.BridgeCommand
	readJSON(t, newer, &start)
	require.Equal(t, models.CommandRecognitionStart, start.Type)

	// the older page echoes the session anyway; none of it may count
	require.NoError(t, older.WriteJSON(finalResult(start.Session, "I am a data scientist")))
	require.NoError(t, older.WriteJSON(models.BridgeMessage{Type: models.MessageRecognitionEnd, Session: start.Session}))
	require.NoError(t, older.Close())
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, newer.WriteJSON(finalResult(start.Session, "I am a data scientist")))
	require.Eventually(t, func() bool { return capture.Text() != "" }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "I am a data scientist", capture.Text())
	assert.True(t, capture.IsListening())
}

func TestSend_OnlyNewestPage(t *testing.T) {
	h, srv := startHub(t)
	older := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	newer := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, h.Send(models.BridgeCommand{Type: models.CommandSpeechSpeak, Text: "Describe a project"}))

	var cmd models.BridgeCommand
	readJSON(t, newer, &cmd)
	assert.Equal(t, "Describe a project", cmd.Text)

	require.NoError(t, older.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := older.ReadMessage()
	assert.Error(t, err, "older page must not receive bridge commands")
}

func TestRecognition_PageDisconnectEndsSession(t *testing.T) {
	h, srv := startHub(t)
	capture := bridgeCapture(t, h)

	page := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, capture.Start(context.Background()))

	var start models.BridgeCommand
	readJSON(t, page, &start)
	require.NoError(t, page.WriteJSON(finalResult(start.Session, "I led the migration")))
	require.Eventually(t, func() bool { return capture.Text() != "" }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, page.Close())
	require.Eventually(t, func() bool { return !capture.IsListening() }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "I led the migration", capture.Text())
}

func TestPageMessagesReachHandler(t *testing.T) {
	h, srv := startHub(t)
	got := make(chan models.BridgeMessage, 1)
	h.OnMessage(func(msg models.BridgeMessage) { got <- msg })

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, h.Send(models.BridgeCommand{Type: models.CommandRecognitionStart, Session: 3}))
	var start models.BridgeCommand
	readJSON(t, conn, &start)
	require.Equal(t, uint64(3), start.Session)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteJSON(models.BridgeMessage{
		Type:    models.MessageRecognitionResult,
		Session: 3,
		Results: []models.BridgeResult{{Transcript: "hello there", IsFinal: true}},
	}))

	select {
	case msg := <-got:
		assert.Equal(t, models.MessageRecognitionResult, msg.Type)
		assert.Equal(t, uint64(3), msg.Session)
		require.Len(t, msg.Results, 1)
		assert.Equal(t, "hello there", msg.Results[0].Transcript)
	case <-time.After(2 * time.Second):
		t.Fatal("page message not delivered")
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	h, srv := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, h.Send(models.BridgeCommand{Type: models.CommandSpeechCancel}), bridge.ErrNoPage)
}
