package server

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/unoduel/internal/player"
	"github.com/lox/unoduel/internal/protocol"
	"github.com/lox/unoduel/internal/session"
)

// ErrHubStopped is returned when the hub is no longer running.
var ErrHubStopped = errors.New("hub stopped")

// Stats is a point-in-time summary of the hub.
type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
	ActiveGames int `json:"activeGames"`
}

type inbound struct {
	conn *Connection
	msg  *protocol.Message
	err  error
}

// Hub owns the player directory, the session registry and every game state.
// All of them are touched only from the Run goroutine, which handles
// registrations, intents and disconnects strictly one at a time.
type Hub struct {
	conns      map[player.ID]*Connection
	directory  *player.Directory
	registry   *session.Registry
	dispatcher *Dispatcher

	register   chan *Connection
	unregister chan *Connection
	incoming   chan inbound
	stats      chan chan Stats
	done       chan struct{}

	logger *log.Logger
}

// NewHub creates a hub over registry and directory. Run must be called for it
// to process anything.
func NewHub(registry *session.Registry, directory *player.Directory, clock quartz.Clock, logger *log.Logger) *Hub {
	h := &Hub{
		conns:      make(map[player.ID]*Connection),
		directory:  directory,
		registry:   registry,
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		incoming:   make(chan inbound),
		stats:      make(chan chan Stats),
		done:       make(chan struct{}),
		logger:     logger.WithPrefix("hub"),
	}
	h.dispatcher = NewDispatcher(registry, directory, h, clock, logger)
	return h
}

// Run processes hub events until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case c := <-h.register:
			h.conns[c.id] = c
			h.dispatcher.Connect(c.id, c.name)
			h.logger.Debug("Client connected", "total", len(h.conns))

		case c := <-h.unregister:
			if h.conns[c.id] != c {
				continue
			}
			delete(h.conns, c.id)
			h.dispatcher.Disconnect(c.id)
			close(c.send)
			h.logger.Debug("Client disconnected", "total", len(h.conns))

		case in := <-h.incoming:
			if h.conns[in.conn.id] != in.conn {
				continue
			}
			if in.err != nil {
				h.dispatcher.sendError(in.conn.id, "Malformed message", "invalid_message")
				continue
			}
			h.dispatcher.Handle(in.conn.id, in.msg)

		case reply := <-h.stats:
			reply <- Stats{
				Connections: len(h.conns),
				Rooms:       h.registry.Len(),
				ActiveGames: h.registry.Started(),
			}

		case <-ctx.Done():
			return nil
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for id, c := range h.conns {
		delete(h.conns, id)
		close(c.send)
		_ = c.Close()
	}
	h.logger.Info("Hub stopped")
}

// Send queues msg for id. A connection whose buffer is full is dropped. Only
// call from the hub goroutine.
func (h *Hub) Send(id player.ID, msg *protocol.Message) {
	c, ok := h.conns[id]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		h.logger.Warn("Connection send buffer full, closing connection", "player", h.directory.Name(id))
		_ = c.Close()
	}
}

// Stats asks the hub goroutine for current counts.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.done:
		return Stats{}, ErrHubStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	return <-reply, nil
}

// join hands a new connection to the hub. It reports false once the hub has
// stopped.
func (h *Hub) join(c *Connection) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) deliver(in inbound) bool {
	select {
	case h.incoming <- in:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Connection) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
