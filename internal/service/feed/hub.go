package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"LovePulse/internal/domain/models"
	drepo "LovePulse/internal/domain/repository"
	applogger "LovePulse/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	sendBuffer = 16
)

// Hub fans new insider log entries out to connected WebSocket clients. It
// doubles as a FeedPublisher so the pipeline treats live sockets like any
// other downstream. Slow clients are dropped rather than back-pressuring
// the pipeline.
type Hub struct {
	logger *applogger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(logger *applogger.Logger) *Hub {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

var _ drepo.FeedPublisher = (*Hub)(nil)

// Register adopts an upgraded connection and serves it until it closes.
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("feed client connected", applogger.Int("clients", n))

	go h.writePump(c)
	go h.readPump(c)
}

// Publish broadcasts one entry to every connected client.
func (h *Hub) Publish(_ context.Context, entry *models.InsiderLogEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			// slow client, drop it
			delete(h.clients, c)
			close(c.send)
		}
	}
	h.mu.Unlock()
	return nil
}

// ClientCount reports connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
