// Package ws pushes store change events to connected UI clients so an open
// page observes sign-ins, sign-outs and gallery changes made elsewhere.
package ws

import (
	"encoding/json"
	"log"
)

// StoreEvent is the payload pushed to clients when a watched store key
// changes. Value is the key's current JSON value, null when absent.
type StoreEvent struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound events to fan out to every client.
	broadcast chan StoreEvent

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan StoreEvent, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.broadcast:
			msgBytes, err := json.Marshal(event)
			if err != nil {
				log.Printf("Error encoding store event: %v", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- msgBytes:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast queues a store event for delivery to every connected client.
func (h *Hub) Broadcast(key string, value []byte) {
	event := StoreEvent{Key: key}
	if value != nil {
		event.Value = json.RawMessage(value)
	}
	h.broadcast <- event
}
