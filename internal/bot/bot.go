package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/protocol"
	"github.com/lox/unoduel/internal/view"
)

// ErrOpponentLeft is returned when the other player disconnects mid-session.
var ErrOpponentLeft = errors.New("opponent disconnected")

// ErrConnectionLost is returned when the server goes away.
var ErrConnectionLost = errors.New("connection lost")

// Conn is the part of a game client a bot drives.
type Conn interface {
	Messages() <-chan *protocol.Message
	PlayerID() string
	CreateRoom() error
	JoinRoom(code string) error
	StartGame() error
	PlayCard(index int, color deck.Color) error
	DrawCard() error
	EndTurn() error
}

// Config controls how a bot enters a room and paces itself.
type Config struct {
	// JoinCode joins an existing room. When empty the bot hosts.
	JoinCode string
	// OnRoomCreated is called with the code of a hosted room.
	OnRoomCreated func(code string)
	// ThinkTime is the pause before each move.
	ThinkTime time.Duration
}

// Result summarises a finished game.
type Result struct {
	Winner   string
	WinnerID string
	Won      bool
	Moves    int
}

// Bot plays one game over a connection using a strategy.
type Bot struct {
	conn     Conn
	strategy Strategy
	cfg      Config
	clock    quartz.Clock
	logger   *log.Logger

	last       view.Game
	moves      int
	rejections int
}

// maxRejections bounds consecutive refused moves before the bot gives up.
const maxRejections = 3

// New creates a bot
func New(conn Conn, strategy Strategy, cfg Config, clock quartz.Clock, logger *log.Logger) *Bot {
	return &Bot{
		conn:     conn,
		strategy: strategy,
		cfg:      cfg,
		clock:    clock,
		logger:   logger.WithPrefix("bot"),
	}
}

// Run plays until the game ends, the opponent leaves or ctx is cancelled.
func (b *Bot) Run(ctx context.Context) (Result, error) {
	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()

		case msg, ok := <-b.conn.Messages():
			if !ok {
				return Result{}, ErrConnectionLost
			}
			done, result, err := b.handle(ctx, msg)
			if err != nil || done {
				return result, err
			}
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *protocol.Message) (bool, Result, error) {
	switch msg.Type {
	case protocol.MessageTypeWelcome:
		if b.cfg.JoinCode != "" {
			b.logger.Info("Joining room", "code", b.cfg.JoinCode)
			return false, Result{}, b.conn.JoinRoom(b.cfg.JoinCode)
		}
		return false, Result{}, b.conn.CreateRoom()

	case protocol.MessageTypeRoomCreated:
		var data protocol.RoomCodeData
		if err := msg.Decode(&data); err != nil {
			return false, Result{}, err
		}
		b.logger.Info("Hosting room", "code", data.Code)
		if b.cfg.OnRoomCreated != nil {
			b.cfg.OnRoomCreated(data.Code)
		}

	case protocol.MessageTypePlayerJoined:
		b.logger.Info("Opponent joined, starting game")
		return false, Result{}, b.conn.StartGame()

	case protocol.MessageTypeGameStarted:
		var start view.Start
		if err := msg.Decode(&start); err != nil {
			return false, Result{}, err
		}
		b.logger.Info("Game started", "seat", start.MyPosition, "hand", len(start.Hand), "starter", start.DiscardTop)
		return false, Result{}, b.update(ctx, start.Game)

	case protocol.MessageTypeGameUpdate:
		var g view.Game
		if err := msg.Decode(&g); err != nil {
			return false, Result{}, err
		}
		b.logger.Debug("Update", "lastAction", g.LastAction, "hand", len(g.Hand), "opponent", g.OpponentCardCount)
		return false, Result{}, b.update(ctx, g)

	case protocol.MessageTypeError:
		var data protocol.ErrorData
		_ = msg.Decode(&data)
		b.logger.Warn("Server rejected move", "message", data.Message, "code", data.Code)
		if b.last.IsMyTurn {
			b.rejections++
			if b.rejections >= maxRejections {
				return true, Result{Moves: b.moves}, fmt.Errorf("giving up after %d rejected moves: %s", b.rejections, data.Message)
			}
			return false, Result{}, b.fallback(ctx)
		}
		if b.cfg.JoinCode != "" && !b.inGame() {
			return true, Result{}, fmt.Errorf("joining %s: %s", b.cfg.JoinCode, data.Message)
		}

	case protocol.MessageTypeGameOver:
		var data protocol.GameOverData
		if err := msg.Decode(&data); err != nil {
			return true, Result{}, err
		}
		result := Result{
			Winner:   data.Winner,
			WinnerID: data.WinnerID,
			Won:      data.WinnerID == b.conn.PlayerID(),
			Moves:    b.moves,
		}
		b.logger.Info("Game over", "winner", data.Winner, "won", result.Won, "moves", b.moves)
		return true, result, nil

	case protocol.MessageTypePlayerDisconnected:
		var data protocol.PlayerDisconnectedData
		_ = msg.Decode(&data)
		b.logger.Warn("Session closed", "message", data.Message)
		return true, Result{Moves: b.moves}, ErrOpponentLeft
	}

	return false, Result{}, nil
}

func (b *Bot) inGame() bool {
	return len(b.last.Hand) > 0
}

// update records the latest view and moves when it is our turn.
func (b *Bot) update(ctx context.Context, g view.Game) error {
	b.last = g
	b.rejections = 0
	if !g.IsMyTurn {
		return nil
	}

	if err := b.think(ctx); err != nil {
		return err
	}

	d := b.strategy.Decide(g)
	b.logger.Debug("Decision", "action", d.Action, "index", d.Index, "color", d.Color, "reasoning", d.Reasoning)
	return b.act(g, d)
}

// fallback keeps the game moving after a rejected move.
func (b *Bot) fallback(ctx context.Context) error {
	if err := b.think(ctx); err != nil {
		return err
	}
	return b.act(b.last, noPlay(b.last, "move rejected"))
}

func (b *Bot) act(g view.Game, d Decision) error {
	b.moves++
	switch d.Action {
	case Play:
		b.logger.Info("Playing", "card", g.Hand[d.Index], "color", d.Color, "reasoning", d.Reasoning)
		return b.conn.PlayCard(d.Index, d.Color)
	case Draw:
		return b.conn.DrawCard()
	case EndTurn:
		return b.conn.EndTurn()
	default:
		return fmt.Errorf("unknown action %d", d.Action)
	}
}

// think waits ThinkTime on the bot's clock.
func (b *Bot) think(ctx context.Context) error {
	if b.cfg.ThinkTime <= 0 {
		return nil
	}

	ready := make(chan struct{})
	timer := b.clock.AfterFunc(b.cfg.ThinkTime, func() { close(ready) }, "bot", "think")
	defer timer.Stop()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
