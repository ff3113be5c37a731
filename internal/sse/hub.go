package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/taskify_api/internal/alert"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventAlertRaised  EventType = "alert.raised"
	EventAlertRemoved EventType = "alert.removed"
)

// AlertEvent is the payload streamed to a session's SSE clients.
type AlertEvent struct {
	Event     EventType           `json:"event"`
	Alert     alert.Alert         `json:"alert"`
	Reason    alert.RemovalReason `json:"reason,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Client represents one connected event stream. A session may have several.
type Client struct {
	ID     string
	Owner  string
	Events chan []byte
}

// Hub manages SSE client connections and routes events to their owner.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client for owner and returns it for streaming.
func (h *Hub) Register(clientID, owner string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:     clientID,
		Owner:  owner,
		Events: make(chan []byte, 64),
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Str("owner", owner).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Publish sends an event to every client of owner.
// Non-blocking: drops the message if a client buffer is full.
func (h *Hub) Publish(owner string, event *AlertEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.Owner != owner {
			continue
		}
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
