package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/protocol"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 54 * time.Second
)

// ErrNotInRoom is returned by room-scoped intents before a room is known.
var ErrNotInRoom = errors.New("not in a room")

// Client represents a WebSocket client for the game server. Incoming messages
// are delivered in order on Messages; the channel closes when the connection
// ends.
type Client struct {
	serverURL string
	name      string
	conn      *websocket.Conn
	send      chan *protocol.Message
	receive   chan *protocol.Message
	clock     quartz.Clock
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu       sync.RWMutex
	playerID string
	roomCode string
}

// Option configures a Client.
type Option func(*Client)

// WithClock sets the clock used for message timestamps and pings.
func WithClock(clock quartz.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// NewClient creates a new WebSocket client. name is requested as the display
// name on connect; the server may adjust it.
func NewClient(serverURL, name string, logger *log.Logger, opts ...Option) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		serverURL: serverURL,
		name:      name,
		send:      make(chan *protocol.Message, 64),
		receive:   make(chan *protocol.Message, 64),
		clock:     quartz.NewReal(),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WebSocketURL turns a server base URL (http, https, ws or wss) into the
// game endpoint URL carrying name.
func WebSocketURL(serverURL, name string) (string, error) {
	if !strings.Contains(serverURL, "://") {
		serverURL = "http://" + serverURL
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = "/ws"
	q := u.Query()
	if name != "" {
		q.Set("name", name)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	wsURL, err := WebSocketURL(c.serverURL, c.name)
	if err != nil {
		return err
	}

	c.logger.Debug("Connecting to server", "url", wsURL)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn

	go c.readPump()
	go c.writePump()

	c.logger.Info("Connected to server", "url", c.serverURL)
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, closing, c.clock.Now().Add(writeWait))
			err = c.conn.Close()
		}
		c.logger.Debug("Disconnected from server")
	})
	return err
}

// Messages returns the stream of messages from the server
func (c *Client) Messages() <-chan *protocol.Message {
	return c.receive
}

// Done is closed once the client is disconnected
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// PlayerID returns the ID assigned by the server, once welcomed
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// RoomCode returns the room the client is in, or the empty string
func (c *Client) RoomCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

// SendMessage queues a message for the server
func (c *Client) SendMessage(msg *protocol.Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

func (c *Client) sendIntent(msgType protocol.MessageType, data any) error {
	msg, err := protocol.NewMessageAt(msgType, data, c.clock.Now())
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

func (c *Client) roomIntent(msgType protocol.MessageType) error {
	code := c.RoomCode()
	if code == "" {
		return ErrNotInRoom
	}
	return c.sendIntent(msgType, protocol.RoomCodeData{Code: code})
}

// CreateRoom asks for a new room hosted by this client
func (c *Client) CreateRoom() error {
	return c.sendIntent(protocol.MessageTypeCreateRoom, nil)
}

// JoinRoom joins the room with the given code
func (c *Client) JoinRoom(code string) error {
	return c.sendIntent(protocol.MessageTypeJoinRoom, protocol.RoomCodeData{Code: code})
}

// StartGame starts the current room's game
func (c *Client) StartGame() error {
	return c.roomIntent(protocol.MessageTypeStartGame)
}

// PlayCard plays the card at index. color is only used for wilds and may be
// empty.
func (c *Client) PlayCard(index int, color deck.Color) error {
	code := c.RoomCode()
	if code == "" {
		return ErrNotInRoom
	}
	return c.sendIntent(protocol.MessageTypePlayCard, protocol.PlayCardData{
		Code:          code,
		CardIndex:     index,
		SelectedColor: color.String(),
	})
}

// DrawCard draws a card
func (c *Client) DrawCard() error {
	return c.roomIntent(protocol.MessageTypeDrawCard)
}

// EndTurn passes the turn after drawing
func (c *Client) EndTurn() error {
	return c.roomIntent(protocol.MessageTypeEndTurn)
}

// SetName changes the display name. Only allowed outside a room.
func (c *Client) SetName(name string) error {
	return c.sendIntent(protocol.MessageTypeSetName, protocol.SetNameData{Name: name})
}

// track follows the session-scoped state the intents need.
func (c *Client) track(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MessageTypeWelcome:
		var data protocol.WelcomeData
		if err := msg.Decode(&data); err == nil {
			c.mu.Lock()
			c.playerID = data.PlayerID
			c.mu.Unlock()
		}

	case protocol.MessageTypeRoomCreated, protocol.MessageTypeRoomJoined:
		var data protocol.RoomCodeData
		if err := msg.Decode(&data); err == nil {
			c.mu.Lock()
			c.roomCode = data.Code
			c.mu.Unlock()
		}

	case protocol.MessageTypeGameOver, protocol.MessageTypePlayerDisconnected:
		c.mu.Lock()
		c.roomCode = ""
		c.mu.Unlock()
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		close(c.receive)
		c.cancel()
	}()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)
		c.track(&msg)

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := c.clock.NewTicker(pingInterval, "client", "ping")
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				_ = c.conn.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
