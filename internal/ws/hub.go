package ws

import (
	"encoding/json"
	"sync"
)

// Event types broadcast on a branch room.
const (
	EventOrderCreated     = "order.created"
	EventOrderCancelled   = "order.cancelled"
	EventOrderPaid        = "order.paid"
	EventOrderItemUpdated = "order_item.updated"
)

// Event represents a WebSocket message to be broadcast. The ID lets clients
// deduplicate on reconnect.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// branchEvent is an internal struct for routing events to specific branches
type branchEvent struct {
	BranchID int64
	Event    Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by branch ID
	rooms map[int64]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *branchEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *branchEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.branchID] == nil {
				h.rooms[client.branchID] = make(map[*Client]bool)
			}
			h.rooms[client.branchID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.branchID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.branchID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.BranchID]

			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			// Send to all clients in this branch's room
			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[event.BranchID], client)
					if len(h.rooms[event.BranchID]) == 0 {
						delete(h.rooms, event.BranchID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToBranch sends an event to all clients subscribed to a specific branch
// This is the public API for handlers to broadcast events
func (h *Hub) BroadcastToBranch(branchID int64, event Event) {
	h.broadcast <- &branchEvent{
		BranchID: branchID,
		Event:    event,
	}
}
