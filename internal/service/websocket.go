package service

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"planning_poker/internal/models"
)

// Client is one live connection. Its ID is the transport identity the
// core keys players and votes by; it is unique while the connection
// lives and never reused before the connection drops.
type Client struct {
	ID       string
	Conn     *websocket.Conn
	SendChan chan models.Event

	roomCode string
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		ID:       id,
		Conn:     conn,
		SendChan: make(chan models.Event, 32),
	}
}

// Send queues an event for delivery without ever blocking the caller
func (c *Client) Send(event models.Event) {
	select {
	case c.SendChan <- event:
	default:
		// Queue full; the client is stalled and will be dropped by its
		// write pump timing out
	}
}

// WritePump drains the send queue onto the wire and keeps the
// connection alive with pings; run it on its own goroutine
func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-c.SendChan:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WebSocketManager groups connections by room code and fans events out
// to them. It only handles delivery; room membership and identity live
// in the registry.
type WebSocketManager struct {
	clients    map[string]map[*Client]bool
	clientsMux sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[string]map[*Client]bool),
	}
}

// Register attaches a client to a room's broadcast group
func (m *WebSocketManager) Register(roomCode string, client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if client.roomCode != "" && client.roomCode != roomCode {
		m.removeLocked(client)
	}
	client.roomCode = roomCode

	if m.clients[roomCode] == nil {
		m.clients[roomCode] = make(map[*Client]bool)
	}
	m.clients[roomCode][client] = true
}

// Unregister detaches a client from its broadcast group
func (m *WebSocketManager) Unregister(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	m.removeLocked(client)
}

func (m *WebSocketManager) removeLocked(client *Client) {
	if group, ok := m.clients[client.roomCode]; ok {
		delete(group, client)
		if len(group) == 0 {
			delete(m.clients, client.roomCode)
		}
	}
	client.roomCode = ""
}

// BroadcastToRoom sends an event to every client attached to the room
func (m *WebSocketManager) BroadcastToRoom(roomCode string, event models.Event) {
	m.clientsMux.RLock()
	group := make([]*Client, 0, len(m.clients[roomCode]))
	for client := range m.clients[roomCode] {
		group = append(group, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range group {
		client.Send(event)
	}
}

// RoomClients returns how many connections a room currently has
func (m *WebSocketManager) RoomClients(roomCode string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[roomCode])
}

// CloseClient tears a connection down after delivery problems
func (m *WebSocketManager) CloseClient(client *Client) {
	m.Unregister(client)
	if err := client.Conn.Close(); err != nil {
		log.Printf("websocket close error: %v", err)
	}
}
