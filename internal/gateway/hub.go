package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/NexxxT-x/TamagotchPy/internal/arena"
	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/engine"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	defaultSendBuffer = 64
)

// Handler receives the inbound traffic of every connection.
type Handler interface {
	Join(ctx context.Context, connID, petID, opponentID string) (arena.JoinResult, error)
	SubmitAction(ctx context.Context, connID string, action engine.Action) (engine.Outcome, error)
	Disconnect(ctx context.Context, connID string)
}

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type JoinRequest struct {
	PetID      string `json:"petId"`
	OpponentID string `json:"opponentId"`
}

type ActionRequest struct {
	Action *engine.Action `json:"action"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// Hub owns the WebSocket connections. Every connection gets an id, a read
// loop that feeds the Handler and a writer goroutine that drains its send
// buffer in order.
type Hub struct {
	upgrader   websocket.Upgrader
	sendBuffer int

	mu      sync.RWMutex
	handler Handler
	clients map[string]*client
}

type Options struct {
	// SendBuffer is the number of frames queued per connection before the
	// connection is dropped as too slow.
	SendBuffer  int
	CheckOrigin func(r *http.Request) bool
}

func NewHub(opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.CheckOrigin == nil {
		opts.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return &Hub{
		upgrader:   websocket.Upgrader{CheckOrigin: opts.CheckOrigin},
		sendBuffer: opts.SendBuffer,
		clients:    make(map[string]*client),
	}
}

// Bind sets the handler. The registry and the hub refer to each other, so
// the handler is attached after both exist.
func (h *Hub) Bind(handler Handler) {
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
}

// Send queues an event for one connection without blocking. Unknown
// connections are ignored; a connection whose buffer is full is closed.
func (h *Hub) Send(connID, event string, data any) {
	b, err := json.Marshal(outbound{Event: event, Data: data})
	if err != nil {
		logging.Error("failed to encode event", err, logging.Fields{constants.LogFieldEvent: event, constants.LogFieldConnID: connID})
		return
	}
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	select {
	case <-c.done:
	case c.send <- b:
	default:
		logging.Warn("send buffer full; dropping connection", logging.Fields{constants.LogFieldConnID: connID})
		c.close()
	}
}

// Connections returns the number of open connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops every connection. Read loops notice and disconnect.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		c.close()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()
}

func (h *Hub) currentHandler() Handler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handler
}

// Serve upgrades the request and runs the connection until it closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", logging.Fields{"error": err.Error()})
		return
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}
	h.register(c)
	logging.Info("connection opened", logging.Fields{constants.LogFieldConnID: c.id, constants.LogFieldAddr: r.RemoteAddr})

	go h.writeLoop(c)

	ctx := context.WithoutCancel(r.Context())
	h.readLoop(ctx, c)

	h.unregister(c)
	c.close()
	if handler := h.currentHandler(); handler != nil {
		handler.Disconnect(ctx, c.id)
	}
	logging.Info("connection closed", logging.Fields{constants.LogFieldConnID: c.id})
}

func (h *Hub) readLoop(ctx context.Context, c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("connection read failed", logging.Fields{constants.LogFieldConnID: c.id, "error": err.Error()})
			}
			return
		}
		h.dispatch(ctx, c.id, msg)
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
