// Package realtime fans out change events to connected dashboard clients over
// websockets, replacing per-widget polling for status and activity updates.
package realtime

import (
	"context"
	"log/slog"
	"sync"
)

// Event is a single change notification pushed to subscribers.
type Event struct {
	Type       string `json:"type"`
	Resource   string `json:"resource_type,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
	Payload    any    `json:"payload,omitempty"`
}

// Hub tracks connected clients and broadcasts events to all of them. Each
// client has a bounded send queue; clients that cannot keep up are dropped
// rather than allowed to stall the broadcast loop.
type Hub struct {
	mu      sync.Mutex
	clients map[*subscriber]struct{}

	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan Event

	logger *slog.Logger
}

type subscriber struct {
	send chan Event
}

const sendQueueSize = 32

// NewHub creates an idle hub; call Run to start the broadcast loop.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*subscriber]struct{}),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		broadcast:  make(chan Event, 64),
		logger:     logger,
	}
}

// Run processes register/unregister/broadcast traffic until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
			}
			h.clients = make(map[*subscriber]struct{})
			h.mu.Unlock()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.remove(c)

		case event := <-h.broadcast:
			h.mu.Lock()
			var stalled []*subscriber
			for c := range h.clients {
				select {
				case c.send <- event:
				default:
					stalled = append(stalled, c)
				}
			}
			h.mu.Unlock()
			for _, c := range stalled {
				h.logger.Warn("dropping slow realtime subscriber")
				h.remove(c)
			}
		}
	}
}

// Broadcast queues an event for delivery to every connected client. It never
// blocks the caller; under extreme backlog the event is dropped.
func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("realtime broadcast queue full, dropping event", "type", event.Type)
	}
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// subscribe registers a new client and returns its event channel plus an
// unsubscribe function.
func (h *Hub) subscribe() (*subscriber, func()) {
	c := &subscriber{send: make(chan Event, sendQueueSize)}
	h.register <- c
	return c, func() {
		select {
		case h.unregister <- c:
		default:
			h.remove(c)
		}
	}
}
