package ws

import (
	"encoding/json"
	"testing"
	"time"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, branchID int64) *Client {
	return &Client{
		hub:      hub,
		branchID: branchID,
		send:     make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub, 1)

	// Register client
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[1] == nil {
		t.Fatal("branch room not created")
	}
	if !hub.rooms[1][client] {
		t.Fatal("client not registered in branch room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub, 1)

	// Register client
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	// Unregister client
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms[1] != nil {
		t.Fatal("branch room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleBranch(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub, 1)
	client2 := mockClient(hub, 2)

	// Register both clients
	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	// Broadcast to branch 1 only
	testPayload := json.RawMessage(`{"order_id":500}`)
	event := Event{
		Type:    EventOrderCreated,
		Payload: testPayload,
	}
	hub.BroadcastToBranch(1, event)

	// Check client1 receives the message
	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != EventOrderCreated {
			t.Errorf("expected type 'order.created', got '%s'", received.Type)
		}
		if string(received.Payload) != string(testPayload) {
			t.Errorf("expected payload '%s', got '%s'", testPayload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	// Check client2 does NOT receive the message
	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for different branch")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestBroadcastToMultipleClientsInSameBranch(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub, 1)
	client2 := mockClient(hub, 1)
	client3 := mockClient(hub, 1)

	// Register all clients to same branch
	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	// Broadcast event
	testPayload := json.RawMessage(`{"order_item_id":900,"status":"DONE"}`)
	event := Event{
		Type:    EventOrderItemUpdated,
		Payload: testPayload,
	}
	hub.BroadcastToBranch(1, event)

	// All three clients should receive the message
	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != EventOrderItemUpdated {
				t.Errorf("client%d: expected type 'order_item.updated', got '%s'", i+1, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestEventSerialization(t *testing.T) {
	testCases := []struct {
		name  string
		event Event
	}{
		{
			name: "order created event",
			event: Event{
				ID:      "evt-1",
				Type:    EventOrderCreated,
				Payload: json.RawMessage(`{"order_id":500,"total_price":"0.00"}`),
			},
		},
		{
			name: "order cancelled event",
			event: Event{
				ID:      "evt-2",
				Type:    EventOrderCancelled,
				Payload: json.RawMessage(`{"order_id":500,"status":"CANCELLED"}`),
			},
		},
		{
			name: "item updated event",
			event: Event{
				ID:      "evt-3",
				Type:    EventOrderItemUpdated,
				Payload: json.RawMessage(`{"order_item_id":900,"status":"DONE"}`),
			},
		},
		{
			name: "order paid event",
			event: Event{
				ID:      "evt-4",
				Type:    EventOrderPaid,
				Payload: json.RawMessage(`{"order_id":500,"paid_price":"150.00"}`),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}

			var decoded Event
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}

			if decoded.ID != tc.event.ID {
				t.Errorf("ID mismatch: got %s, want %s", decoded.ID, tc.event.ID)
			}
			if decoded.Type != tc.event.Type {
				t.Errorf("Type mismatch: got %s, want %s", decoded.Type, tc.event.Type)
			}
			if string(decoded.Payload) != string(tc.event.Payload) {
				t.Errorf("Payload mismatch: got %s, want %s", decoded.Payload, tc.event.Payload)
			}
		})
	}
}

func TestHubMultipleBranchesIsolation(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Create 2 clients per branch
	clients := map[int64][]*Client{
		1: {mockClient(hub, 1), mockClient(hub, 1)},
		2: {mockClient(hub, 2), mockClient(hub, 2)},
		3: {mockClient(hub, 3), mockClient(hub, 3)},
	}

	// Register all clients
	for _, clientList := range clients {
		for _, client := range clientList {
			hub.register <- client
		}
	}
	time.Sleep(10 * time.Millisecond)

	// Broadcast to branch 2 only
	event := Event{
		Type:    EventOrderPaid,
		Payload: json.RawMessage(`{"branch_id":2}`),
	}
	hub.BroadcastToBranch(2, event)

	// Only branch 2 clients should receive
	for branchID, clientList := range clients {
		for i, client := range clientList {
			select {
			case msg := <-client.send:
				if branchID != 2 {
					t.Fatalf("branch %d client %d should not receive message", branchID, i)
				}
				var received Event
				if err := json.Unmarshal(msg, &received); err != nil {
					t.Fatalf("unmarshal error: %v", err)
				}
				if received.Type != EventOrderPaid {
					t.Errorf("wrong event type: %s", received.Type)
				}
			case <-time.After(50 * time.Millisecond):
				if branchID == 2 {
					t.Fatalf("branch 2 client %d should have received message", i)
				}
				// Expected for other branches
			}
		}
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub, 1)
	client2 := mockClient(hub, 1)

	// Register both clients
	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[1]) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(hub.rooms[1]))
	}
	hub.mu.RUnlock()

	// Unregister first client
	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[1]) != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", len(hub.rooms[1]))
	}
	hub.mu.RUnlock()

	// Unregister second client
	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if hub.rooms[1] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
	hub.mu.RUnlock()
}

func TestBroadcastToNonExistentBranch(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Create a client for branch 1
	client1 := mockClient(hub, 1)
	hub.register <- client1
	time.Sleep(10 * time.Millisecond)

	// Broadcast to branch 2 (no room)
	event := Event{
		Type:    EventOrderCreated,
		Payload: json.RawMessage(`{"test":"data"}`),
	}
	hub.BroadcastToBranch(2, event)

	// client1 should NOT receive anything
	select {
	case <-client1.send:
		t.Fatal("client should not receive message for different branch")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message
	}
}
