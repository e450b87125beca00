package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"backoffice/internal/api"
	"backoffice/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local development tool; any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscriber pairs a connection with a write lock. Broadcast runs on the
// handler goroutine of each mutation, so overlapping mutations would
// otherwise write the same connection concurrently, which gorilla/websocket
// forbids.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(event api.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(event)
}

// Hub fans change events out to websocket subscribers. A slow or dead
// subscriber is dropped rather than allowed to block the others.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]*subscriber
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]*subscriber)}
}

// HandleSubscribe upgrades the request to a websocket and registers the
// connection until it closes.
func (h *Hub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	h.mu.Lock()
	h.conns[conn] = &subscriber{conn: conn}
	subscribers := len(h.conns)
	h.mu.Unlock()

	logging.Info("Change feed subscriber connected",
		zap.String("remote_addr", r.RemoteAddr),
		zap.Int("subscribers", subscribers),
	)

	// The feed is write-only. Reading drains control frames and detects
	// the peer going away.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a change event to every subscriber.
func (h *Hub) Broadcast(event api.ChangeEvent) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.conns))
	for _, sub := range h.conns {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.send(event); err != nil {
			logging.Debug("Dropping change feed subscriber",
				zap.String("remote_addr", sub.conn.RemoteAddr().String()),
				zap.Error(err),
			)
			h.drop(sub.conn)
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[*websocket.Conn]*subscriber)
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

// drop removes and closes one subscriber.
func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}
