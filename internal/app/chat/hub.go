/*
Package chat is the WebSocket transport for the presence core.

This file defines the Hub, the process-wide table of open connections. The
Hub implements presence.Transport: delivery marshals the frame once and
enqueues it on each target client's buffered send channel. Enqueueing never
blocks; a full or closed queue drops that connection's copy of the frame.
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"pulsechat/internal/pkg/logx"
)

// Hub tracks every open connection, keyed by connection id.
type Hub struct {
	// mu protects concurrent access to the conns map.
	mu sync.RWMutex

	// conns maps connection id to its client.
	conns map[string]*Client

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]*Client),
		logger: logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Add registers a client under its connection id.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.conns[c.id] = c
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Info().
		Str("conn_id", c.id).
		Str("username", c.username).
		Int("total_connections", total).
		Msg("Connection added to hub.")
}

// Remove drops the client if it is still the one registered under its id.
// Removing an already-removed client is a no-op.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	current, ok := h.conns[c.id]
	if ok && current == c {
		delete(h.conns, c.id)
	}
	total := len(h.conns)
	h.mu.Unlock()

	if ok {
		h.logger.Info().
			Str("conn_id", c.id).
			Str("username", c.username).
			Int("total_connections", total).
			Msg("Connection removed from hub.")
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}

// snapshot copies the current clients so delivery loops never hold the hub
// lock while enqueueing.
func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.conns))
	for _, c := range h.conns {
		clients = append(clients, c)
	}
	return clients
}

// DeliverToAll sends the event to every open connection.
func (h *Hub) DeliverToAll(event string, payload any) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	for _, c := range h.snapshot() {
		c.enqueue(frame)
	}
}

// DeliverToConnection sends the event to a single connection id. Unknown ids
// are ignored: the connection may have closed since the caller snapshotted it.
func (h *Hub) DeliverToConnection(connID string, event string, payload any) {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()

	if !ok {
		h.logger.Debug().
			Str("conn_id", connID).
			Str("event", event).
			Msg("Delivery to unknown connection skipped.")
		return
	}

	frame, encoded := h.encode(event, payload)
	if !encoded {
		return
	}

	c.enqueue(frame)
}

// DeliverToAllExcept sends the event to every open connection except the
// given one.
func (h *Hub) DeliverToAllExcept(connID string, event string, payload any) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	for _, c := range h.snapshot() {
		if c.id == connID {
			continue
		}
		c.enqueue(frame)
	}
}

// encode marshals the outbound frame once for the whole fan-out.
func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	frame, err := json.Marshal(Frame{Event: event, Payload: payload})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event", event).
			Msg("Failed to marshal outbound frame.")
		return nil, false
	}
	return frame, true
}

// Shutdown closes every client's send channel, which terminates their write
// pumps, and empties the table.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down hub...")

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.conns))
	for _, c := range h.conns {
		clients = append(clients, c)
	}
	h.conns = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.closeSend()
	}

	h.logger.Info().Int("closed_connections", len(clients)).Msg("Hub shutdown complete.")
}
