package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	memeventbus "github.com/alanyang/polybus/internal/adapter/memory/eventbus"
	"github.com/alanyang/polybus/internal/domain/event"
	porteventbus "github.com/alanyang/polybus/internal/port/eventbus"
	eventssvc "github.com/alanyang/polybus/internal/service/events"
)

const (
	sendBuffer = 256
	writeWait  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks connected clients. Every client is a bus listener for the non-frame
// catalog categories for as long as its connection is open, and also receives
// whatever is passed to Broadcast.
type Hub struct {
	bus    porteventbus.EventBus
	events *eventssvc.Service

	clients map[*client]bool
	mu      sync.RWMutex
}

func NewHub(bus porteventbus.EventBus, events *eventssvc.Service) *Hub {
	return &Hub{
		bus:     bus,
		events:  events,
		clients: make(map[*client]bool),
	}
}

func (h *Hub) Register(rg *gin.RouterGroup) {
	rg.GET("", h.handleWS)
}

// Clients reports the number of open connections.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	cl := newClient(conn)
	if err := h.bus.Subscribe(cl); err != nil {
		slog.Error("websocket subscribe failed", "client_id", cl.id, "error", err)
		conn.Close()
		return
	}

	h.mu.Lock()
	h.clients[cl] = true
	h.mu.Unlock()
	slog.Debug("websocket client connected", "client_id", cl.id)

	go cl.writeLoop()

	defer func() {
		h.bus.Unsubscribe(cl)
		h.mu.Lock()
		delete(h.clients, cl)
		h.mu.Unlock()
		cl.close()
		slog.Debug("websocket client disconnected", "client_id", cl.id, "dropped", cl.dropped)
	}()

	h.readLoop(c.Request.Context(), cl)
}

// inbound is a message a client sends to post an event.
type inbound struct {
	Category string          `json:"category"`
	Payload  json.RawMessage `json:"payload"`
}

func (h *Hub) readLoop(ctx context.Context, cl *client) {
	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			cl.send(errorMessage("invalid message: " + err.Error()))
			continue
		}
		if _, err := h.events.PostNamed(ctx, msg.Category, msg.Payload); err != nil {
			cl.send(errorMessage(err.Error()))
		}
	}
}

// Broadcast implements port/notifier.Broadcaster.
func (h *Hub) Broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("websocket broadcast marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.clients {
		cl.send(data)
	}
}

// Close ends every open connection. Each client's pending messages are flushed
// before the close frame is written.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		cl.close()
	}
}

func errorMessage(msg string) []byte {
	data, _ := json.Marshal(map[string]string{"type": "error", "error": msg})
	return data
}

// ── client ────────────────────────────────────────────────────────────────────

type client struct {
	id   uuid.UUID
	conn *websocket.Conn

	mu      sync.Mutex
	out     chan []byte
	closed  bool
	dropped int
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:   uuid.New(),
		conn: conn,
		out:  make(chan []byte, sendBuffer),
	}
}

// streamed is the envelope for bus events forwarded to a client.
type streamed struct {
	Type   string       `json:"type"`
	Record event.Record `json:"record"`
}

func (cl *client) Handlers() []memeventbus.Handler {
	return []memeventbus.Handler{
		memeventbus.On(forward[event.Keyboard](cl)),
		memeventbus.On(forward[event.MouseMove](cl)),
		memeventbus.On(forward[event.MouseButton](cl)),
		memeventbus.On(forward[event.LoadGame](cl)),
		memeventbus.On(forward[event.ResizeWindow](cl)),
	}
}

func forward[E any](cl *client) func(E) error {
	return func(e E) error {
		rec, err := event.NewRecord(e)
		if err != nil {
			return err
		}
		data, err := json.Marshal(streamed{Type: "event", Record: rec})
		if err != nil {
			return err
		}
		cl.send(data)
		return nil
	}
}

// send queues data without blocking; when the client falls behind the message is dropped.
func (cl *client) send(data []byte) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.closed {
		return
	}
	select {
	case cl.out <- data:
	default:
		cl.dropped++
	}
}

func (cl *client) close() {
	cl.mu.Lock()
	if !cl.closed {
		cl.closed = true
		close(cl.out)
	}
	cl.mu.Unlock()
}

func (cl *client) writeLoop() {
	defer cl.conn.Close()
	for data := range cl.out {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Error("websocket write failed", "client_id", cl.id, "error", err)
			return
		}
	}
	cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")) //nolint:errcheck
}
