package server

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
	"github.com/lox/unoduel/internal/player"
	"github.com/lox/unoduel/internal/protocol"
	"github.com/lox/unoduel/internal/roomcode"
	"github.com/lox/unoduel/internal/session"
	"github.com/lox/unoduel/internal/view"
)

// Publisher delivers a message to a connected player. Delivery to a player who
// has gone away is silently dropped.
type Publisher interface {
	Send(id player.ID, msg *protocol.Message)
}

// Dispatcher turns client intents into registry calls and the resulting
// per-player messages. It is not safe for concurrent use; the hub calls it
// from its single goroutine so each intent runs to completion before the next.
type Dispatcher struct {
	registry  *session.Registry
	directory *player.Directory
	out       Publisher
	clock     quartz.Clock
	logger    *log.Logger
}

// NewDispatcher creates a dispatcher over registry and directory.
func NewDispatcher(registry *session.Registry, directory *player.Directory, out Publisher, clock quartz.Clock, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		directory: directory,
		out:       out,
		clock:     clock,
		logger:    logger.WithPrefix("dispatch"),
	}
}

// Connect registers a newly connected player and greets them.
func (d *Dispatcher) Connect(id player.ID, name string) *player.Player {
	p := d.directory.Register(id, name)
	d.logger.Info("Player connected", "player", p.Name, "id", id.Short())
	d.send(id, protocol.MessageTypeWelcome, protocol.WelcomeData{PlayerID: id.String(), Name: p.Name})
	return p
}

// Disconnect tears down whatever room the player was in and forgets them. The
// remaining participant gets a single playerDisconnected notice.
func (d *Dispatcher) Disconnect(id player.ID) {
	name := d.directory.Name(id)

	if room, others := d.registry.Leave(id); room != nil {
		d.logger.Info("Room closed by disconnect", "code", room.Code, "player", name, "started", room.Started())
		for _, other := range others {
			d.send(other, protocol.MessageTypePlayerDisconnected, protocol.PlayerDisconnectedData{
				Message: name + " disconnected",
			})
		}
	}

	d.directory.Remove(id)
	d.logger.Info("Player disconnected", "player", name, "id", id.Short())
}

// Handle processes one intent from id.
func (d *Dispatcher) Handle(id player.ID, msg *protocol.Message) {
	d.logger.Debug("Received message", "type", msg.Type, "player", d.directory.Name(id))

	switch msg.Type {
	case protocol.MessageTypeCreateRoom:
		d.handleCreateRoom(id)

	case protocol.MessageTypeJoinRoom:
		var data protocol.RoomCodeData
		if !d.decode(id, msg, &data) {
			return
		}
		d.handleJoinRoom(id, data)

	case protocol.MessageTypeStartGame:
		var data protocol.RoomCodeData
		if !d.decode(id, msg, &data) {
			return
		}
		d.handleStartGame(id, data)

	case protocol.MessageTypePlayCard:
		var data protocol.PlayCardData
		if !d.decode(id, msg, &data) {
			return
		}
		d.handlePlayCard(id, data)

	case protocol.MessageTypeDrawCard:
		var data protocol.RoomCodeData
		if !d.decode(id, msg, &data) {
			return
		}
		d.handleDrawCard(id, data)

	case protocol.MessageTypeEndTurn:
		var data protocol.RoomCodeData
		if !d.decode(id, msg, &data) {
			return
		}
		d.handleEndTurn(id, data)

	case protocol.MessageTypeSetName:
		var data protocol.SetNameData
		if !d.decode(id, msg, &data) {
			return
		}
		d.handleSetName(id, data)

	default:
		d.sendError(id, "Unknown message type: "+msg.Type.String(), "")
	}
}

func (d *Dispatcher) handleCreateRoom(id player.ID) {
	room, err := d.registry.CreateSession(id)
	if err != nil {
		d.reject(id, protocol.MessageTypeCreateRoom, err)
		return
	}
	d.send(id, protocol.MessageTypeRoomCreated, protocol.RoomCodeData{Code: room.Code})
}

func (d *Dispatcher) handleJoinRoom(id player.ID, data protocol.RoomCodeData) {
	code, err := normalizeCode(data.Code)
	if err != nil {
		d.reject(id, protocol.MessageTypeJoinRoom, err)
		return
	}

	room, err := d.registry.JoinSession(code, id)
	if err != nil {
		d.reject(id, protocol.MessageTypeJoinRoom, err)
		return
	}

	participants := participantsOf(room)
	d.send(id, protocol.MessageTypeRoomJoined, protocol.RoomJoinedData{Code: room.Code, Participants: participants})
	for _, other := range room.Others(id) {
		d.send(other, protocol.MessageTypePlayerJoined, protocol.PlayerJoinedData{Participants: participants})
	}
}

func (d *Dispatcher) handleStartGame(id player.ID, data protocol.RoomCodeData) {
	code, err := normalizeCode(data.Code)
	if err != nil {
		d.reject(id, protocol.MessageTypeStartGame, err)
		return
	}

	st, err := d.registry.StartSession(code, id)
	if err != nil {
		d.reject(id, protocol.MessageTypeStartGame, err)
		return
	}

	room, _ := d.registry.Lookup(code)
	for _, seat := range st.Players() {
		d.send(seat, protocol.MessageTypeGameStarted, view.ProjectStart(st, seat, room.Name))
	}
}

func (d *Dispatcher) handlePlayCard(id player.ID, data protocol.PlayCardData) {
	code, err := normalizeCode(data.Code)
	if err != nil {
		d.reject(id, protocol.MessageTypePlayCard, err)
		return
	}

	chosen := deck.Color(strings.ToLower(strings.TrimSpace(data.SelectedColor)))
	room, out, err := d.registry.PlayCard(code, id, data.CardIndex, chosen)
	if err != nil {
		d.reject(id, protocol.MessageTypePlayCard, err)
		return
	}

	if out.Won() {
		over := protocol.GameOverData{Winner: room.Name(out.Winner), WinnerID: out.Winner.String()}
		for _, seat := range room.IDs() {
			d.send(seat, protocol.MessageTypeGameOver, over)
		}
		return
	}
	d.broadcast(room, out)
}

func (d *Dispatcher) handleDrawCard(id player.ID, data protocol.RoomCodeData) {
	code, err := normalizeCode(data.Code)
	if err != nil {
		d.reject(id, protocol.MessageTypeDrawCard, err)
		return
	}

	room, out, err := d.registry.DrawCard(code, id)
	if err != nil {
		d.reject(id, protocol.MessageTypeDrawCard, err)
		return
	}
	d.broadcast(room, out)
}

// handleEndTurn never answers with an error: an end-turn that does not apply
// is dropped.
func (d *Dispatcher) handleEndTurn(id player.ID, data protocol.RoomCodeData) {
	code, err := normalizeCode(data.Code)
	if err != nil {
		d.logger.Debug("Ignoring endTurn", "player", d.directory.Name(id), "error", err)
		return
	}

	room, out, err := d.registry.EndTurn(code, id)
	if err != nil {
		d.logger.Debug("Ignoring endTurn", "player", d.directory.Name(id), "code", code, "error", err)
		return
	}
	d.broadcast(room, out)
}

func (d *Dispatcher) handleSetName(id player.ID, data protocol.SetNameData) {
	p, ok := d.directory.Get(id)
	if !ok {
		d.reject(id, protocol.MessageTypeSetName, session.ErrUnknownPlayer)
		return
	}
	if p.InRoom() {
		d.reject(id, protocol.MessageTypeSetName, session.ErrAlreadyInRoom)
		return
	}

	p, err := d.directory.Rename(id, data.Name)
	if err != nil {
		d.reject(id, protocol.MessageTypeSetName, err)
		return
	}
	d.send(id, protocol.MessageTypeNameSet, protocol.WelcomeData{PlayerID: id.String(), Name: p.Name})
}

// broadcast pushes each participant their own view of the room's game.
func (d *Dispatcher) broadcast(room *session.Room, out game.Outcome) {
	st := room.Game()
	lastAction := out.Describe(room.Name)
	for id, v := range view.ForAll(st, lastAction) {
		d.send(id, protocol.MessageTypeGameUpdate, v)
	}
}

func (d *Dispatcher) decode(id player.ID, msg *protocol.Message, v any) bool {
	if err := msg.Decode(v); err != nil {
		d.logger.Debug("Malformed payload", "type", msg.Type, "error", err)
		d.sendError(id, "Malformed "+msg.Type.String()+" message", "invalid_message")
		return false
	}
	return true
}

// reject reports a refused intent to its sender only. Unexpected failures are
// logged and reported generically.
func (d *Dispatcher) reject(id player.ID, intent protocol.MessageType, err error) {
	var gameErr *game.Error
	if !errors.As(err, &gameErr) {
		d.logger.Error("Intent failed", "type", intent, "player", d.directory.Name(id), "error", err)
		d.sendError(id, "Internal server error", game.Internal.String())
		return
	}

	d.logger.Debug("Intent rejected", "type", intent, "player", d.directory.Name(id), "kind", gameErr.Kind, "error", err)
	d.sendError(id, gameErr.Message, gameErr.Kind.String())
}

func (d *Dispatcher) sendError(id player.ID, message, code string) {
	d.send(id, protocol.MessageTypeError, protocol.ErrorData{Message: message, Code: code})
}

func (d *Dispatcher) send(id player.ID, msgType protocol.MessageType, data any) {
	msg, err := protocol.NewMessageAt(msgType, data, d.clock.Now())
	if err != nil {
		d.logger.Error("Failed to create message", "type", msgType, "error", err)
		return
	}
	d.out.Send(id, msg)
}

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if roomcode.Validate(code) != nil {
		return "", game.ErrSessionNotFound
	}
	return code, nil
}

func participantsOf(room *session.Room) []protocol.Participant {
	roster := room.Roster()
	out := make([]protocol.Participant, len(roster))
	for i, p := range roster {
		out[i] = protocol.Participant{ID: p.ID.String(), Name: p.Name}
	}
	return out
}
