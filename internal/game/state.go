package game

import (
	"fmt"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/player"
	"github.com/lox/unoduel/internal/randutil"
)

// Config holds the tunable rules.
type Config struct {
	// HandSize is the number of cards dealt to each player.
	HandSize int
	// DefaultWildColor is declared when a wild is played without a color.
	// Red matches the classic client, which never omitted it on purpose.
	DefaultWildColor deck.Color
}

// DefaultConfig returns the standard rules: seven cards each, red fallback.
func DefaultConfig() Config {
	return Config{
		HandSize:         7,
		DefaultWildColor: deck.Red,
	}
}

// State is the authoritative state of one started game.
type State struct {
	cfg Config
	rng randutil.Source

	deck    *deck.Deck
	discard *deck.Deck
	players [2]player.ID
	hands   map[player.ID][]deck.Card

	current   player.ID
	color     deck.Color
	value     string
	phase     Phase
	direction int
	skipNext  bool
	winner    player.ID
}

// New deals a new game between host and guest from a freshly shuffled deck.
// The host acts first.
func New(host, guest player.ID, rng randutil.Source, cfg Config) (*State, error) {
	return NewFromDeck(host, guest, deck.Build(rng), rng, cfg)
}

// NewFromDeck deals a new game from d as given, without shuffling it first.
func NewFromDeck(host, guest player.ID, d *deck.Deck, rng randutil.Source, cfg Config) (*State, error) {
	if host == "" || guest == "" || host == guest {
		return nil, fmt.Errorf("need two distinct players, got %q and %q", host, guest)
	}
	if cfg.HandSize < 1 {
		return nil, fmt.Errorf("invalid hand size: %d", cfg.HandSize)
	}
	if !cfg.DefaultWildColor.Valid() {
		cfg.DefaultWildColor = deck.Red
	}

	s := &State{
		cfg:       cfg,
		rng:       rng,
		deck:      d,
		discard:   deck.NewDeck(),
		players:   [2]player.ID{host, guest},
		hands:     make(map[player.ID][]deck.Card, 2),
		current:   host,
		direction: 1,
		phase:     AwaitingMove,
	}

	for range cfg.HandSize {
		for _, id := range s.players {
			card, ok := s.deck.Deal()
			if !ok {
				return nil, fmt.Errorf("deck exhausted while dealing %d cards each", cfg.HandSize)
			}
			s.hands[id] = append(s.hands[id], card)
		}
	}

	if err := s.turnStarter(); err != nil {
		return nil, err
	}
	return s, nil
}

// turnStarter reveals cards until a number card turns up. Wild and action
// cards revealed on the way never go back into the draw pile; they sit
// beneath the starter in the discard pile.
func (s *State) turnStarter() error {
	var setAside []deck.Card
	for {
		card, ok := s.deck.Deal()
		if !ok {
			return fmt.Errorf("no number card left to start the discard pile")
		}
		if card.IsNumber() {
			s.discard.Push(card)
			s.discard.Append(setAside...)
			s.color = card.Color
			s.value = card.Value
			return nil
		}
		setAside = append(setAside, card)
	}
}

// Players returns host and guest, in that order.
func (s *State) Players() [2]player.ID {
	return s.players
}

// IsPlayer reports whether id is one of the two players.
func (s *State) IsPlayer(id player.ID) bool {
	return id == s.players[0] || id == s.players[1]
}

// Opponent returns the other player.
func (s *State) Opponent(id player.ID) player.ID {
	if id == s.players[0] {
		return s.players[1]
	}
	return s.players[0]
}

// Hand returns a copy of id's hand.
func (s *State) Hand(id player.ID) []deck.Card {
	hand := s.hands[id]
	out := make([]deck.Card, len(hand))
	copy(out, hand)
	return out
}

// HandSize returns the number of cards id holds.
func (s *State) HandSize(id player.ID) int {
	return len(s.hands[id])
}

// DiscardTop returns the card on top of the discard pile.
func (s *State) DiscardTop() deck.Card {
	top, _ := s.discard.Top()
	return top
}

// Current returns the player whose turn it is.
func (s *State) Current() player.ID {
	return s.current
}

// Color returns the active color to match.
func (s *State) Color() deck.Color {
	return s.color
}

// Value returns the active value to match.
func (s *State) Value() string {
	return s.value
}

// Phase returns the turn phase.
func (s *State) Phase() Phase {
	return s.phase
}

// HasDrawn reports whether the current player has drawn this turn.
func (s *State) HasDrawn() bool {
	return s.phase == AwaitingMoveOrEnd
}

// Winner returns the winner once the game has ended.
func (s *State) Winner() (player.ID, bool) {
	return s.winner, s.phase == Ended
}

// Direction is +1 or -1. With two players it has no observable effect.
func (s *State) Direction() int {
	return s.direction
}

// DeckSize returns the number of cards left in the draw pile.
func (s *State) DeckSize() int {
	return s.deck.Len()
}

// DiscardSize returns the number of cards in the discard pile.
func (s *State) DiscardSize() int {
	return s.discard.Len()
}

// CardCount returns the total number of cards in play. It stays equal to the
// size of the deck the game was dealt from.
func (s *State) CardCount() int {
	total := s.deck.Len() + s.discard.Len()
	for _, hand := range s.hands {
		total += len(hand)
	}
	return total
}
