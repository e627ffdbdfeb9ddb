package sse

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/tilekeeper/internal/model"
)

// Hub manages SSE clients watching a single game
type Hub struct {
	gameID  model.GameID
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a game
func NewHub(gameID model.GameID, logger *slog.Logger) *Hub {
	return &Hub{
		gameID:     gameID,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("game_id", string(gameID))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug("sse hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("sse client registered",
				slog.String("client", client.name),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("sse client unregistered",
					slog.String("client", client.name),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.deliver(message)

		case <-h.done:
			h.drain()
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Debug("sse hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// deliver sends a message to every client without blocking on slow ones
func (h *Hub) deliver(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	droppedCount := 0
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			droppedCount++
			h.logger.Warn("sse message dropped - client buffer full",
				slog.String("client", client.name))
		}
	}
	if droppedCount > 0 {
		h.logger.Warn("sse broadcast partial failure",
			slog.Int("sent", len(h.clients)-droppedCount),
			slog.Int("dropped", droppedCount))
	}
}

// drain delivers messages queued before the hub was closed
func (h *Hub) drain() {
	for {
		select {
		case message := <-h.broadcast:
			h.deliver(message)
		default:
			return
		}
	}
}

// Register adds a client to the hub. Returns false if the hub is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a message to all clients
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("sse broadcast dropped - hub buffer full")
	}
}

// BroadcastEvent sends an SSE event with a name and data
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.Broadcast(formatSSEMessage(eventName, data))
}

// Close shuts down the hub, disconnecting every client
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE message with event name and data
// Multi-line data is properly formatted with "data: " prefix on each line
func formatSSEMessage(eventName, data string) []byte {
	var sb strings.Builder
	sb.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager manages hubs for all watched games. A hub lives while at
// least one watcher holds it.
type HubManager struct {
	hubs     map[model.GameID]*Hub
	watchers map[*Hub]int
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:     make(map[model.GameID]*Hub),
		watchers: make(map[*Hub]int),
		logger:   logger.With(slog.String("component", "sse")),
	}
}

// Acquire returns the hub for a game, starting one if needed, and counts the
// caller as a watcher until Release
func (m *HubManager) Acquire(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[gameID]
	if !ok {
		hub = NewHub(gameID, m.logger)
		m.hubs[gameID] = hub
		go hub.Run()
	}
	m.watchers[hub]++
	return hub
}

// Release drops one watcher of hub and stops the hub when it was the last
func (m *HubManager) Release(hub *Hub) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.watchers[hub]
	if !ok {
		return
	}
	if n > 1 {
		m.watchers[hub] = n - 1
		return
	}
	delete(m.watchers, hub)
	hub.Close()
	if m.hubs[hub.gameID] == hub {
		delete(m.hubs, hub.gameID)
	}
	m.logger.Debug("sse hub released", slog.String("game_id", string(hub.gameID)))
}

// ServeSSE streams a game's events to one watcher, holding its hub for the
// life of the request
func (m *HubManager) ServeSSE(w http.ResponseWriter, r *http.Request, gameID model.GameID) {
	hub := m.Acquire(gameID)
	defer m.Release(hub)
	ServeSSE(w, r, hub)
}

// GetHub returns the hub for a game, or nil if nobody is watching it
func (m *HubManager) GetHub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[gameID]
}

// RemoveHub closes a game's hub, disconnecting its watchers
func (m *HubManager) RemoveHub(gameID model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[gameID]; ok {
		hub.Close()
		delete(m.hubs, gameID)
		delete(m.watchers, hub)
		m.logger.Info("sse hub removed", slog.String("game_id", string(gameID)))
	}
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hubs)
}

// CloseAll closes every hub, used on shutdown
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
		delete(m.watchers, hub)
	}
}
