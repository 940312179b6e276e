package orders

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"gadgethub/models"

	"github.com/gorilla/websocket"
)

// AdminRoom receives every order event. Each user also has a room named by
// their id.
const AdminRoom = "admin"

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	Room   string
	UserID string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans order events out to connected websocket clients.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	quit       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					// slow consumer
					h.drop(c)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for _, conns := range h.rooms {
				for c := range conns {
					h.drop(c)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// drop must be called with mu held. Dropping twice is a no-op.
func (h *Hub) drop(c *Client) {
	conns := h.rooms[c.Room]
	if !conns[c] {
		return
	}
	delete(conns, c)
	close(c.Send)
	if len(conns) == 0 {
		delete(h.rooms, c.Room)
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.quit:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Broadcast delivers ev to the admin room and to the order owner's room.
func (h *Hub) Broadcast(ev models.OrderEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Hub] marshal %s: %v", ev.Type, err)
		return
	}
	for _, room := range []string{AdminRoom, ev.UserID} {
		select {
		case h.broadcast <- broadcastMsg{Room: room, Data: data}:
		case <-h.quit:
			return
		}
	}
}

// Publish lets the hub stand in for the redis emitter when the server runs
// as a single in-memory instance.
func (h *Hub) Publish(_ context.Context, ev models.OrderEvent) error {
	h.Broadcast(ev)
	return nil
}

func (h *Hub) clients(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
