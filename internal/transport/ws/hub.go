package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub tracks connected profiles and routes feed events to them. All state is
// owned by the Run loop.
type Hub struct {
	// clients maps profileID → client.
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	send       chan *sendMsg
}

type sendMsg struct {
	// recipients is nil for a broadcast to everyone connected.
	recipients []uuid.UUID
	data       []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan *sendMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			// A reconnect replaces the old connection; release its channels
			// so its write pump exits.
			if old, ok := h.clients[client.profileID]; ok && old != client {
				close(old.send)
				close(old.done)
			}
			h.clients[client.profileID] = client
			zap.L().Info("ws hub: profile connected",
				zap.String("profile_id", client.profileID.String()),
				zap.Int("total", len(h.clients)),
			)

		case client := <-h.unregister:
			// Only the connection that still owns the slot may vacate it; a
			// stale connection's late unregister must not evict a reconnect.
			if h.clients[client.profileID] == client {
				h.drop(client)
				zap.L().Info("ws hub: profile disconnected",
					zap.String("profile_id", client.profileID.String()),
					zap.Int("total", len(h.clients)),
				)
			}

		case msg := <-h.send:
			if msg.recipients == nil {
				for _, client := range h.clients {
					h.push(client, msg.data)
				}
				continue
			}
			for _, id := range msg.recipients {
				if client, ok := h.clients[id]; ok {
					h.push(client, msg.data)
				}
			}
		}
	}
}

// push hands data to one client, disconnecting it if its buffer is full.
func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client.profileID)
	close(client.send)
	close(client.done)
}

// SendToProfiles delivers an event to each listed profile that is online.
func (h *Hub) SendToProfiles(recipients []uuid.UUID, event *Event) {
	if len(recipients) == 0 {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("ws hub: marshal error", zap.Error(err))
		return
	}
	h.send <- &sendMsg{recipients: recipients, data: data}
}

// Broadcast delivers an event to every connected client.
func (h *Hub) Broadcast(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("ws hub: marshal error", zap.Error(err))
		return
	}
	h.send <- &sendMsg{data: data}
}
