package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/unoduel/internal/player"
	"github.com/lox/unoduel/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Outgoing messages buffered per connection before it is dropped
	sendBufferSize = 256
)

// Connection represents a WebSocket connection to a client. It only moves
// bytes: decoded messages go to the hub, and the hub is the only writer to
// send.
type Connection struct {
	id         player.ID
	name       string
	conn       *websocket.Conn
	send       chan *protocol.Message
	hub        *Hub
	clock      quartz.Clock
	pingPeriod time.Duration
	logger     *log.Logger
	closeOnce  sync.Once
}

// NewConnection creates a new connection wrapper for the player id
func NewConnection(id player.ID, name string, conn *websocket.Conn, hub *Hub, clock quartz.Clock, pingPeriod time.Duration, logger *log.Logger) *Connection {
	return &Connection{
		id:         id,
		name:       name,
		conn:       conn,
		send:       make(chan *protocol.Message, sendBufferSize),
		hub:        hub,
		clock:      clock,
		pingPeriod: pingPeriod,
		logger:     logger.WithPrefix("conn").With("id", id.Short()),
	}
}

// ID returns the player ID bound to this connection
func (c *Connection) ID() player.ID {
	return c.id
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the underlying socket. The read pump notices and unregisters.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// pongWait is how long the peer has to answer a ping.
func (c *Connection) pongWait() time.Duration {
	return c.pingPeriod * 10 / 9
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(c.clock.Now().Add(c.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(c.clock.Now().Add(c.pongWait()))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", "error", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("Undecodable message", "error", err)
			if !c.hub.deliver(inbound{conn: c, err: err}) {
				return
			}
			continue
		}

		if !c.hub.deliver(inbound{conn: c, msg: &msg}) {
			return
		}
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := c.clock.NewTicker(c.pingPeriod, "conn", "ping")
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
