package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atssight/recruiter-desk/internal/dashboard"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local API; any origin may subscribe
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventClient is one websocket subscriber
type eventClient struct {
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// SafeSend queues a message unless the client is closed or too slow
func (c *eventClient) SafeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// SafeClose closes the send channel once
func (c *eventClient) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// Hub fans dashboard events out to websocket clients
type Hub struct {
	mu      sync.RWMutex
	clients map[*eventClient]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*eventClient]bool)}
}

// Broadcast sends ev to every connected client. Slow clients miss events
// rather than block the dashboard.
func (h *Hub) Broadcast(ev dashboard.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Hub] Failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.SafeSend(data) {
			log.Printf("[Hub] Dropped %s event for %s", ev.Type, c.conn.RemoteAddr())
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *eventClient) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(c *eventClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.SafeClose()
	}
	h.mu.Unlock()
}

// Close disconnects all clients
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		c.SafeClose()
		delete(h.clients, c)
	}
	h.mu.Unlock()
}

// handleEvents upgrades to a websocket and streams dashboard events. The
// first message is {"type":"connected"} once the client is registered.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] Failed to upgrade to websocket: %v", err)
		return
	}

	client := &eventClient{conn: conn, send: make(chan []byte, sendBufferSize)}
	s.hub.register(client)
	client.SafeSend([]byte(`{"type":"connected"}`))

	go client.writePump()
	s.readPump(client)
}

// readPump discards incoming messages and unregisters the client when the
// connection drops
func (s *Server) readPump(c *eventClient) {
	defer func() {
		s.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Hub] Unexpected close: %v", err)
			}
			return
		}
	}
}

// writePump writes queued events and keeps the connection alive with pings
func (c *eventClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Hub] Write failed: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
