package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/player"
	"github.com/lox/unoduel/internal/randutil"
)

const (
	host  = player.ID("host")
	guest = player.ID("guest")
)

var (
	red    = func(n int) deck.Card { return deck.NewNumber(deck.Red, n) }
	blue   = func(n int) deck.Card { return deck.NewNumber(deck.Blue, n) }
	green  = func(n int) deck.Card { return deck.NewNumber(deck.Green, n) }
	yellow = func(n int) deck.Card { return deck.NewNumber(deck.Yellow, n) }
)

// stacked deals a game where host and guest receive exactly the given hands,
// followed by the remaining cards in order (the first of which becomes the
// starter if it is a number card).
func stacked(t *testing.T, hostHand, guestHand []deck.Card, rest ...deck.Card) *State {
	t.Helper()
	require.Equal(t, len(hostHand), len(guestHand), "hands must be the same size")

	var cards []deck.Card
	for i := range hostHand {
		cards = append(cards, hostHand[i], guestHand[i])
	}
	cards = append(cards, rest...)

	cfg := DefaultConfig()
	cfg.HandSize = len(hostHand)
	st, err := NewFromDeck(host, guest, deck.NewDeck(cards...), randutil.New(1), cfg)
	require.NoError(t, err)
	return st
}

type snapshot struct {
	hostHand  []deck.Card
	guestHand []deck.Card
	current   player.ID
	phase     Phase
	color     deck.Color
	value     string
	deckSize  int
	discard   int
}

func snap(s *State) snapshot {
	return snapshot{
		hostHand:  s.Hand(host),
		guestHand: s.Hand(guest),
		current:   s.Current(),
		phase:     s.Phase(),
		color:     s.Color(),
		value:     s.Value(),
		deckSize:  s.DeckSize(),
		discard:   s.DiscardSize(),
	}
}

func names(id player.ID) string {
	switch id {
	case host:
		return "Alice"
	case guest:
		return "Bob"
	}
	return string(id)
}
