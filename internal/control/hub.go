// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package control

import (
	"context"
	"sort"
	"sync"

	"github.com/clearcast/playoutd/internal/events"
	"github.com/clearcast/playoutd/internal/logging"
	"github.com/clearcast/playoutd/internal/metrics"
)

// Message is one frame sent down a control WebSocket connection: the
// snapshot kind it carries, plus the queue or active snapshot itself
// (exactly one of the two is set, mirroring events.Event).
type Message struct {
	Kind   events.Kind            `json:"kind"`
	Active *events.ActiveSnapshot `json:"active,omitempty"`
	Queue  *events.QueueSnapshot  `json:"queue,omitempty"`
}

// Hub relays events.Bus snapshots to every connected control-channel
// WebSocket client. It is the control-channel analogue of the engine's
// dispatch loop: a single goroutine owns client registration and
// broadcast, so client bookkeeping never races against itself.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext starts the hub with context support for graceful
// shutdown, suited to suture supervision. Uses priority-based selection
// so client lifecycle events are always applied before a broadcast is
// fanned out against the updated client set.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.closeAllClients()
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	metrics.RecordWSClientConnected(1)
	logging.Info().Int("totalClients", h.GetClientCount()).Msg("control client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	metrics.RecordWSClientConnected(-1)
	logging.Info().Int("totalClients", h.GetClientCount()).Msg("control client disconnected")
}

// broadcastToClients fans a message out to every client in ascending ID
// order, so tests and logs observe deterministic delivery instead of Go's
// randomized map-iteration order. A client whose send buffer is full is
// dropped rather than allowed to stall the broadcast.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.RecordWSBroadcast(string(message.Kind))
		default:
			metrics.RecordWSDropped(string(message.Kind))
			toRemove = append(toRemove, client)
		}
	}
	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	logging.Info().Msg("closed all control clients during shutdown")
}

// Broadcast enqueues a snapshot event for delivery to every connected
// client. It never blocks the caller (the engine's event-bus subscriber
// goroutine): a full broadcast buffer drops the message.
func (h *Hub) Broadcast(event *events.Event) {
	message := Message{Kind: event.Kind, Active: event.Active, Queue: event.Queue}
	select {
	case h.broadcast <- message:
	default:
		metrics.RecordWSDropped(string(event.Kind))
		logging.Warn().Str("kind", string(event.Kind)).Msg("control broadcast buffer full, dropping message")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// String satisfies suture.Service.
func (h *Hub) String() string { return "control-hub" }

// Serve implements suture.Service by delegating to RunWithContext.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}
