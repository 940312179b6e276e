package orders

import (
	"encoding/json"
	"testing"
	"time"

	"gadgethub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) models.OrderEvent {
	t.Helper()
	select {
	case data := <-c.Send:
		var ev models.OrderEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return models.OrderEvent{}
	}
}

func TestHubRoutesEventsByRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	admin := &Client{Send: make(chan []byte, 4), Room: AdminRoom}
	alice := &Client{Send: make(chan []byte, 4), Room: "alice"}
	bob := &Client{Send: make(chan []byte, 4), Room: "bob"}
	for _, c := range []*Client{admin, alice, bob} {
		hub.Register(c)
	}

	hub.Broadcast(models.OrderEvent{Type: models.EventOrderCreated, OrderID: "o1", UserID: "alice"})

	assert.Equal(t, "o1", receive(t, admin).OrderID)
	assert.Equal(t, "o1", receive(t, alice).OrderID)
	select {
	case <-bob.Send:
		t.Fatal("bob must not see alice's order")
	case <-time.After(50 * time.Millisecond):
	}

	hub.Unregister(alice)
	hub.Unregister(alice)
	assert.Eventually(t, func() bool { return hub.clients("alice") == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-alice.Send
	assert.False(t, open)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	slow := &Client{Send: make(chan []byte), Room: AdminRoom}
	hub.Register(slow)

	hub.Broadcast(models.OrderEvent{Type: models.EventOrderUpdated, UserID: "x"})
	assert.Eventually(t, func() bool { return hub.clients(AdminRoom) == 0 }, time.Second, 10*time.Millisecond)
}
