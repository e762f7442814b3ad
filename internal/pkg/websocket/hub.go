// Package websocket pushes account notifications (new inquiries, connection
// requests) to signed-in users over a websocket.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is one notification frame
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	recipientID int64
}

// Hub maintains the set of active clients per user and fans events out to them
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	deliveries chan *Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Guards clients for readers outside Run
	mu sync.RWMutex

	allowedOrigins map[string]bool
	logger         zerolog.Logger
}

// NewHub creates a new Hub. allowedOrigins restricts browser connections;
// "*" allows any origin.
func NewHub(allowedOrigins []string, logger zerolog.Logger) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		clients:        make(map[int64]map[*Client]bool),
		deliveries:     make(chan *Event, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		allowedOrigins: origins,
		logger:         logger,
	}
}

// Run handles registrations and deliveries until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.deliveries:
			h.deliver(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug().
		Int64("userID", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Notification client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Debug().Int64("userID", client.userID).Msg("Notification client unregistered")
}

// deliver writes the event to every connection of its recipient. Clients
// whose buffer is full are dropped.
func (h *Hub) deliver(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal notification")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[event.recipientID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn().Int64("userID", client.userID).Msg("Dropping slow notification client")
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Notify queues an event for userID. It never blocks; when the queue is
// full the event is dropped.
func (h *Hub) Notify(userID int64, kind string, payload any) {
	event := &Event{
		Type:        kind,
		Payload:     payload,
		Timestamp:   time.Now().UTC(),
		recipientID: userID,
	}
	select {
	case h.deliveries <- event:
	default:
		h.logger.Warn().Int64("userID", userID).Str("type", kind).Msg("Notification queue full, dropping event")
	}
}

// ConnectedCount returns the number of open connections for userID
func (h *Hub) ConnectedCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) originAllowed(origin string) bool {
	// Non-browser clients send no Origin header
	if origin == "" {
		return true
	}
	return h.allowedOrigins["*"] || h.allowedOrigins[origin]
}
