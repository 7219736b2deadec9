package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gravitas-games/shoptiles/internal/network"
	"github.com/gravitas-games/shoptiles/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. day_started carries a full
	// world snapshot.
	maxMessageSize = 64 * 1024
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	// WebSocket connection
	ws *websocket.Conn

	// Server reference
	server *Server

	// Player information (set after authentication)
	player *models.Player

	// Buffered channel for outbound messages
	send chan []byte

	closeOnce sync.Once
}

// NewConnection creates a new connection for an authenticated player
func NewConnection(ws *websocket.Conn, server *Server, player *models.Player) *Connection {
	return &Connection{
		ws:     ws,
		server: server,
		player: player,
		send:   make(chan []byte, 256),
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.player.Connected = true
	c.player.ConnectedAt = time.Now()
	c.server.session.AddConnection(c, c.player)

	// Start read and write pumps
	go c.writePump()
	c.readPump() // Blocking
}

// readPump pumps messages from the WebSocket connection to the session
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.monitor.Warnf("WebSocket read error: %v", err)
			}
			break
		}
		c.player.LastSeen = time.Now()

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.server.monitor.Debugf("Failed to parse client message: %v", err)
			c.SendMessage(errorMessage("invalid_message", "Failed to parse message"))
			continue
		}

		c.server.monitor.Tracef("Received message type %s from %s", clientMsg.Type, c.player.Username)
		reply, broadcast := c.server.session.Dispatch(c.player, &clientMsg)
		if reply != nil {
			c.SendMessage(reply)
		}
		if broadcast != nil {
			c.server.session.BroadcastMessage(broadcast)
		}
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.server.monitor.Warnf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.server.ctx.Done():
			// Server shutting down
			return
		}
	}
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.server.monitor.Errorf("Failed to marshal message: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
		c.server.monitor.Warnf("Send buffer full for %s, dropping message", c.player.Username)
	}
}

// Close leaves the session and closes the connection. The send channel is
// closed only after the session stops broadcasting to it.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.server.session.RemoveConnection(c)
		c.player.Connected = false
		close(c.send)
		c.ws.Close()
	})
}
