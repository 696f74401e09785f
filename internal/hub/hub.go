// Package hub connects browser pages over WebSocket. Interview views go to
// every connected page. Bridge commands go to a single page, the most recently
// connected one, and only that page's messages for the live recognition
// session are handed back to the handler.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/logging"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech/bridge"
)

// ErrBacklog is returned when the outbound queue is full.
var ErrBacklog = errors.New("hub outbound queue full")

const (
	writeWait   = 5 * time.Second
	outboundCap = 100

	// TypeView tags view envelopes; bridge commands carry their own type.
	TypeView = "view"
)

type viewEnvelope struct {
	Type string `json:"type"`
	View any    `json:"view"`
}

// outbound is a queued write. A nil conn means every page.
type outbound struct {
	conn *websocket.Conn
	data []byte
}

// Hub manages WebSocket connections. All writes happen on the Run goroutine.
type Hub struct {
	broadcast  chan outbound
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*websocket.Conn]uint64 // connection order
	seq     uint64
	primary *websocket.Conn // receives bridge commands
	// recognizer runs the live recognition session; messages from other pages
	// or for other sessions are dropped.
	recognizer *websocket.Conn
	session    uint64

	handlerMu sync.RWMutex
	handler   func(models.BridgeMessage)
	snapshot  func() any

	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// New creates a hub. Run must be called for messages to flow.
func New() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]uint64),
		broadcast:  make(chan outbound, outboundCap),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			// pages are served from the coach's own origin or a local dev server
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logging.WithComponent("hub"),
	}
}

// OnMessage sets the handler for page messages.
func (h *Hub) OnMessage(fn func(models.BridgeMessage)) {
	h.handlerMu.Lock()
	defer h.handlerMu.Unlock()
	h.handler = fn
}

// OnConnect sets the view sent to a page as soon as it connects.
func (h *Hub) OnConnect(snapshot func() any) {
	h.handlerMu.Lock()
	defer h.handlerMu.Unlock()
	h.snapshot = snapshot
}

// ClientCount returns the number of connected pages.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send pushes a bridge command to the most recently connected page. A
// recognition.start binds its session to that page until the matching stop
// or the page goes away. Send fails with bridge.ErrNoPage when nobody is connected.
func (h *Hub) Send(cmd models.BridgeCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	h.mu.Lock()
	target := h.primary
	switch cmd.Type {
	case models.CommandRecognitionStart:
		h.recognizer, h.session = target, cmd.Session
	case models.CommandRecognitionStop:
		if h.recognizer != nil && cmd.Session == h.session {
			target = h.recognizer
			h.recognizer = nil
		}
	}
	h.mu.Unlock()

	if target == nil {
		return bridge.ErrNoPage
	}
	return h.enqueue(outbound{conn: target, data: data})
}

// PublishView pushes a view to every page. Views are dropped when no page is connected.
func (h *Hub) PublishView(view any) {
	if h.ClientCount() == 0 {
		return
	}
	data, err := json.Marshal(viewEnvelope{Type: TypeView, View: view})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode view")
		return
	}
	if err := h.enqueue(outbound{data: data}); err != nil {
		h.logger.Warn().Err(err).Msg("View dropped")
	}
}

func (h *Hub) enqueue(msg outbound) error {
	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrBacklog
	}
}

// Run delivers queued messages until ctx is cancelled, then closes every connection.
// It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.primary, h.recognizer = nil, nil
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.seq++
			h.clients[conn] = h.seq
			h.primary = conn
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info().Int("clients", total).Msg("Page connected")

			// taken after registration so no view published meanwhile is lost
			if initial := h.initialView(); initial != nil {
				h.write(conn, initial)
			}

		case conn := <-h.unregister:
			h.drop(conn)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var conns []*websocket.Conn
			if msg.conn != nil {
				if _, ok := h.clients[msg.conn]; ok {
					conns = append(conns, msg.conn)
				}
			} else {
				conns = make([]*websocket.Conn, 0, len(h.clients))
				for conn := range h.clients {
					conns = append(conns, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range conns {
				h.write(conn, msg.data)
			}
		}
	}
}

func (h *Hub) initialView() []byte {
	h.handlerMu.RLock()
	snapshot := h.snapshot
	h.handlerMu.RUnlock()
	if snapshot == nil {
		return nil
	}
	data, err := json.Marshal(viewEnvelope{Type: TypeView, View: snapshot()})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode view")
		return nil
	}
	return data
}

func (h *Hub) write(conn *websocket.Conn, data []byte) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Warn().Err(err).Msg("Write error")
		h.drop(conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	if h.primary == conn {
		h.primary = h.newestLocked()
	}
	orphaned := ok && h.recognizer == conn
	session := h.session
	if orphaned {
		h.recognizer = nil
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	_ = conn.Close()
	h.logger.Info().Int("clients", total).Msg("Page disconnected")

	if orphaned {
		// the session's page is gone; end it the way the browser reports an abort
		h.dispatch(models.BridgeMessage{
			Type:    models.MessageRecognitionError,
			Session: session,
			Error:   "aborted",
			Message: "page disconnected",
		})
	}
}

func (h *Hub) newestLocked() *websocket.Conn {
	var newest *websocket.Conn
	var latest uint64
	for conn, seq := range h.clients {
		if seq > latest {
			newest, latest = conn, seq
		}
	}
	return newest
}

// dispatch hands msg to the handler off the Run goroutine.
func (h *Hub) dispatch(msg models.BridgeMessage) {
	h.handlerMu.RLock()
	fn := h.handler
	h.handlerMu.RUnlock()
	if fn != nil {
		go fn(msg)
	}
}

// ServeHTTP upgrades the request and reads page messages until the page goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	select {
	case h.register <- conn:
	case <-r.Context().Done():
		_ = conn.Close()
		return
	case <-h.done:
		_ = conn.Close()
		return
	}

	go h.read(conn)
}

func (h *Hub) read(conn *websocket.Conn) {
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.done:
		}
	}()
	for {
		var msg models.BridgeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				h.logger.Debug().Err(err).Msg("Ignoring malformed page message")
				continue
			}
			return
		}

		if !h.fromRecognizer(conn, msg) {
			h.logger.Debug().Str("type", msg.Type).Uint64("session", msg.Session).Msg("Ignoring message from a page not running this recognition session")
			continue
		}

		h.handlerMu.RLock()
		fn := h.handler
		h.handlerMu.RUnlock()
		if fn != nil {
			fn(msg)
		}
	}
}

func (h *Hub) fromRecognizer(conn *websocket.Conn, msg models.BridgeMessage) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return conn == h.recognizer && msg.Session == h.session
}
