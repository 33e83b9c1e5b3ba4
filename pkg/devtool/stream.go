package devtool

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Hub broadcasts diagnostic events to connected WebSocket clients so
// external tooling can watch renders live. Events are delivered
// best-effort: a client that cannot keep up is dropped, never the
// other way around.
type Hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	closed   bool
}

// NewHub creates a hub with no connected clients.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // diagnostic endpoint, mount behind your own auth
			},
		},
	}
}

// Sink returns the Func to hand to the bridge. Events are JSON-encoded
// and broadcast to every connected client.
func (h *Hub) Sink() Func {
	return func(e Event) {
		h.broadcast(e)
	}
}

// ServeHTTP upgrades the request to a WebSocket and holds it open until
// the client disconnects or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = true
	h.mu.Unlock()

	// Drain control frames until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Routes returns a chi router exposing the event stream at /events.
// Mount it wherever your application serves diagnostics:
//
//	r.Mount("/_reobserve", hub.Routes())
func (h *Hub) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/events", h.ServeHTTP)
	return r
}

// broadcast sends an event to all connected clients.
func (h *Hub) broadcast(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects future connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
