package session

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
	"github.com/lox/unoduel/internal/player"
	"github.com/lox/unoduel/internal/randutil"
	"github.com/lox/unoduel/internal/roomcode"
)

var (
	ErrRoomFull         = &game.Error{Kind: game.Capacity, Message: "Room is full"}
	ErrAlreadyStarted   = &game.Error{Kind: game.Capacity, Message: "Game already started"}
	ErrWrongPlayerCount = &game.Error{Kind: game.Capacity, Message: "Need exactly 2 players to start"}
	ErrNotHost          = &game.Error{Kind: game.Unauthorized, Message: "Only the host can start the game"}
	ErrAlreadyInRoom    = &game.Error{Kind: game.StateConflict, Message: "You are already in a room"}
	ErrUnknownPlayer    = &game.Error{Kind: game.NotFound, Message: "Unknown player"}
)

// Registry owns every live room, keyed by code, and routes intents to each
// room's game. It keeps the player directory's room membership in step with
// the rooms. Like the directory it is owned by a single goroutine.
type Registry struct {
	rooms     map[string]*Room
	directory *player.Directory
	codes     *roomcode.Generator
	rng       randutil.Source
	newDeck   func(randutil.Source) *deck.Deck
	rules     game.Config
	logger    *log.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithCodeGenerator overrides how room codes are generated.
func WithCodeGenerator(g *roomcode.Generator) Option {
	return func(r *Registry) { r.codes = g }
}

// WithDeckSource overrides how the deck for each new game is produced. The
// deck is dealt in the order returned.
func WithDeckSource(fn func(randutil.Source) *deck.Deck) Option {
	return func(r *Registry) { r.newDeck = fn }
}

// WithRules sets the game rules used for new games.
func WithRules(cfg game.Config) Option {
	return func(r *Registry) { r.rules = cfg }
}

// NewRegistry creates an empty registry. rng shuffles every deck dealt.
func NewRegistry(directory *player.Directory, rng randutil.Source, logger *log.Logger, opts ...Option) *Registry {
	r := &Registry{
		rooms:     make(map[string]*Room),
		directory: directory,
		codes:     roomcode.NewGenerator(nil),
		rng:       rng,
		newDeck:   deck.Build,
		rules:     game.DefaultConfig(),
		logger:    logger.WithPrefix("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateSession opens a room with hostID as its only participant.
func (r *Registry) CreateSession(hostID player.ID) (*Room, error) {
	host, ok := r.directory.Get(hostID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if host.InRoom() {
		return nil, ErrAlreadyInRoom
	}

	code, err := r.codes.Unique(func(c string) bool {
		_, taken := r.rooms[c]
		return taken
	})
	if err != nil {
		return nil, fmt.Errorf("allocating room code: %w", err)
	}

	room := &Room{
		Code:         code,
		HostID:       hostID,
		Participants: []Participant{{ID: hostID, Name: host.Name}},
	}
	r.rooms[code] = room
	r.directory.SetRoom(hostID, code)

	r.logger.Info("Room created", "code", code, "host", host.Name)
	return room, nil
}

// JoinSession seats playerID as the second participant of the room.
func (r *Registry) JoinSession(code string, playerID player.ID) (*Room, error) {
	p, ok := r.directory.Get(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}

	room, ok := r.rooms[code]
	switch {
	case !ok:
		return nil, game.ErrSessionNotFound
	case p.InRoom():
		return nil, ErrAlreadyInRoom
	case room.Full():
		return nil, ErrRoomFull
	case room.Started():
		return nil, ErrAlreadyStarted
	}

	room.Participants = append(room.Participants, Participant{ID: playerID, Name: p.Name})
	r.directory.SetRoom(playerID, code)

	r.logger.Info("Player joined room", "code", code, "player", p.Name)
	return room, nil
}

// StartSession deals the room's game. Only the host may start, and only with
// both seats filled.
func (r *Registry) StartSession(code string, requesterID player.ID) (*game.State, error) {
	room, ok := r.rooms[code]
	switch {
	case !ok:
		return nil, game.ErrSessionNotFound
	case requesterID != room.HostID:
		return nil, ErrNotHost
	case room.Started():
		return nil, ErrAlreadyStarted
	case len(room.Participants) != MaxParticipants:
		return nil, ErrWrongPlayerCount
	}

	st, err := game.NewFromDeck(room.Participants[0].ID, room.Participants[1].ID, r.newDeck(r.rng), r.rng, r.rules)
	if err != nil {
		return nil, fmt.Errorf("dealing room %s: %w", code, err)
	}
	room.game = st

	r.logger.Info("Game started", "code", code,
		"host", room.Participants[0].Name,
		"guest", room.Participants[1].Name,
		"starter", st.DiscardTop())
	return st, nil
}

// DestroySession removes the room and clears every participant's membership.
// Destroying an unknown code is a no-op.
func (r *Registry) DestroySession(code string) (*Room, bool) {
	room, ok := r.rooms[code]
	if !ok {
		return nil, false
	}
	delete(r.rooms, code)
	for _, p := range room.Participants {
		r.directory.ClearRoom(p.ID)
	}

	r.logger.Info("Room destroyed", "code", code)
	return room, true
}

// Lookup returns the room for code.
func (r *Registry) Lookup(code string) (*Room, bool) {
	room, ok := r.rooms[code]
	return room, ok
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	return len(r.rooms)
}

// Started returns the number of rooms with a game in progress.
func (r *Registry) Started() int {
	n := 0
	for _, room := range r.rooms {
		if room.Started() {
			n++
		}
	}
	return n
}

// PlayCard plays a card in the room's game. A winning play destroys the room;
// the returned room is still usable for notifying its former participants.
func (r *Registry) PlayCard(code string, actor player.ID, index int, chosen deck.Color) (*Room, game.Outcome, error) {
	room, st, err := r.active(code)
	if err != nil {
		return nil, game.Outcome{}, err
	}

	out, err := st.Play(actor, index, chosen)
	if err != nil {
		return nil, game.Outcome{}, err
	}

	if out.Won() {
		r.logger.Info("Game won", "code", code, "winner", room.Name(out.Winner))
		r.DestroySession(code)
	}
	return room, out, nil
}

// DrawCard draws a card for actor.
func (r *Registry) DrawCard(code string, actor player.ID) (*Room, game.Outcome, error) {
	room, st, err := r.active(code)
	if err != nil {
		return nil, game.Outcome{}, err
	}

	out, err := st.Draw(actor)
	if err != nil {
		return nil, game.Outcome{}, err
	}
	return room, out, nil
}

// EndTurn passes actor's turn after a draw.
func (r *Registry) EndTurn(code string, actor player.ID) (*Room, game.Outcome, error) {
	room, st, err := r.active(code)
	if err != nil {
		return nil, game.Outcome{}, err
	}

	out, err := st.EndTurn(actor)
	if err != nil {
		return nil, game.Outcome{}, err
	}
	return room, out, nil
}

// Leave handles a player going away: any room they were in is destroyed and
// the participants left behind are returned.
func (r *Registry) Leave(id player.ID) (*Room, []player.ID) {
	p, ok := r.directory.Get(id)
	if !ok || !p.InRoom() {
		return nil, nil
	}
	room, ok := r.DestroySession(p.RoomCode)
	if !ok {
		return nil, nil
	}
	return room, room.Others(id)
}

func (r *Registry) active(code string) (*Room, *game.State, error) {
	room, ok := r.rooms[code]
	if !ok || !room.Started() {
		return nil, nil, game.ErrSessionNotFound
	}
	return room, room.game, nil
}
