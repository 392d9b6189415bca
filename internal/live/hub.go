// Package live streams field frames of a running simulation to websocket
// clients.
package live

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/0x5844/heat2D/internal/grid"
)

// Frame is one downsampled view of the field.
type Frame struct {
	Step   int         `json:"step"`
	Size   int         `json:"size"`
	Stride int         `json:"stride"`
	Max    float64     `json:"max"`
	Field  [][]float64 `json:"field"`
}

// NewFrame samples every stride-th row and column of g.
func NewFrame(step int, g grid.Grid, stride int) Frame {
	stride = max(stride, 1)
	n := g.Size()
	f := Frame{Step: step, Size: n, Stride: stride}
	for i := 0; i < n; i += stride {
		row := g.Row(i)
		out := make([]float64, 0, (n+stride-1)/stride)
		for j := 0; j < n; j += stride {
			out = append(out, row[j])
			f.Max = max(f.Max, row[j])
		}
		f.Field = append(f.Field, out)
	}
	return f
}

// StrideFor picks the sampling stride that keeps a frame at or below limit
// cells per side.
func StrideFor(size, limit int) int {
	if limit < 1 || size <= limit {
		return 1
	}
	return (size + limit - 1) / limit
}

// Hub tracks connected clients and broadcasts frames to them. The most
// recent frame is sent to every client as soon as it connects.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    *Frame
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: upgrade: %v", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = connMu
	last := h.last
	h.mu.Unlock()
	defer h.remove(conn)

	if last != nil {
		connMu.Lock()
		err := conn.WriteJSON(last)
		connMu.Unlock()
		if err != nil {
			return
		}
	}

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends f to every client and returns how many received it.
// Clients whose write fails are dropped.
func (h *Hub) Broadcast(f Frame) int {
	h.mu.Lock()
	h.last = &f
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for c, m := range h.clients {
		conns[c] = m
	}
	h.mu.Unlock()

	sent := 0
	for c, m := range conns {
		m.Lock()
		err := c.WriteJSON(f)
		m.Unlock()
		if err != nil {
			h.remove(c)
			c.Close()
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c, m := range h.clients {
		m.Lock()
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run complete"))
		m.Unlock()
		if err != nil {
			log.Printf("live: close: %v", err)
		}
		c.Close()
		delete(h.clients, c)
	}
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}
