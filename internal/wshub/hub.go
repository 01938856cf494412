// Package wshub tracks the websocket connections bound to one room and
// fans relay events out to them. Sends are non-blocking: a client that
// cannot keep up loses events, which is acceptable for advisory traffic.
package wshub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"griddle/internal/protocol"
)

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ConnID string
	Name   string
	Conn   *websocket.Conn
	Send   chan []byte

	closeOnce sync.Once
}

// NewClient wraps an accepted connection with a buffered send queue.
func NewClient(connID, name string, conn *websocket.Conn) *Client {
	return &Client{
		ConnID: connID,
		Name:   name,
		Conn:   conn,
		Send:   make(chan []byte, 16),
	}
}

// Close shuts the send queue down. Owned by the connection handler, not the
// hub: a client that leaves one room may still register with another on the
// same connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// WritePump reads from the Send channel and writes to the WebSocket
// connection until the channel closes or the context is cancelled.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub manages the connections of one room.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ConnID] = c
}

// Unregister removes a client from the hub. Once removed, no relayed event
// can reach the client through this hub again; the send queue itself stays
// open and is closed by whoever owns the connection.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connID)
}

// Len reports how many clients are registered.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendTo delivers a message to one client, if still registered.
func (h *Hub) SendTo(connID string, msg protocol.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("wshub: marshal")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[connID]; ok {
		trySend(c, data)
	}
}

// Broadcast sends a message to every client in the room.
func (h *Hub) Broadcast(msg protocol.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("wshub: marshal")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		trySend(c, data)
	}
}

// BroadcastExcept sends a message to all clients except the sender.
func (h *Hub) BroadcastExcept(senderID string, msg protocol.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("wshub: marshal")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if id == senderID {
			continue
		}
		trySend(c, data)
	}
}

// trySend drops the message if the client's queue is full.
func trySend(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
	}
}
