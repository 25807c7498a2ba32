// Package websocket provides WebSocket connection management and per-user
// message delivery.
package websocket

import (
	"log"
	"sync"
)

// delivery is a message addressed to one user, or to everyone when userID
// is empty.
type delivery struct {
	userID string
	data   []byte
}

// Hub maintains the set of active WebSocket clients and routes messages to
// the connections of their user.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages
	broadcast chan delivery

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe client access
	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main event loop.
// This should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client connected for user %s (total: %d)", client.userID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected for user %s (total: %d)", client.userID, total)

		case d := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if d.userID != "" && client.userID != d.userID {
					continue
				}
				select {
				case client.send <- d.data:
				default:
					// Client send buffer full, close connection
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(message []byte) {
	h.enqueue(delivery{data: message})
}

// BroadcastTo sends a message to every connection of one user.
func (h *Hub) BroadcastTo(userID string, message []byte) {
	if userID == "" {
		return
	}
	h.enqueue(delivery{userID: userID, data: message})
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.broadcast <- d:
	default:
		log.Println("Broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserClientCount returns the number of connections of one user.
func (h *Hub) UserClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.userID == userID {
			n++
		}
	}
	return n
}

// Client represents a WebSocket client connection of one user.
type Client struct {
	hub    *Hub
	userID string
	send   chan []byte
}

// NewClient creates a new WebSocket client.
func NewClient(hub *Hub, userID string) *Client {
	return &Client{
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, 256),
	}
}

// UserID returns the user the connection belongs to.
func (c *Client) UserID() string {
	return c.userID
}

// Send returns the send channel for the client.
func (c *Client) Send() chan []byte {
	return c.send
}

// Reply queues a message for this connection only. It reports false when the
// connection is gone or its buffer is full.
func (c *Client) Reply(message []byte) bool {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}
