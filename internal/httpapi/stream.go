package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

// ExecutionEvent is one runtime-engine transition pushed to subscribers of
// a mission run: a node starting, finishing, a loop iterating, a block.
type ExecutionEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	TaskID    string    `json:"task_id"`
	NodeID    string    `json:"node_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

type streamClient struct {
	conn   *websocket.Conn
	send   chan *ExecutionEvent
	taskID string
}

// Hub fans out execution events to clients subscribed to a task ID.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*streamClient]bool // taskID -> clients
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*streamClient]bool)}
}

func (h *Hub) subscribe(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.taskID] == nil {
		h.clients[c.taskID] = make(map[*streamClient]bool)
	}
	h.clients[c.taskID][c] = true
}

func (h *Hub) unsubscribe(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.taskID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.taskID)
		}
	}
	close(c.send)
}

// Publish delivers an event to every client watching its task. Nothing in
// this module calls it; the runtime engine does not publish node transitions.
func (h *Hub) Publish(event *ExecutionEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[event.TaskID] {
		select {
		case client.send <- event:
		default:
			log.Warn().Str("task_id", event.TaskID).Msg("stream client buffer full, dropping event")
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveStream upgrades the connection and streams events for one task ID
// until the client disconnects.
func (h *Hub) serveStream(w http.ResponseWriter, r *http.Request, taskID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &streamClient{conn: conn, send: make(chan *ExecutionEvent, sendBufferSize), taskID: taskID}
	h.subscribe(client)

	go client.writePump(h)
	client.readPump(h)
}

func (c *streamClient) readPump(h *Hub) {
	defer func() {
		h.unsubscribe(c)
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *streamClient) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
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
