package game

import (
	"slices"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/player"
)

// Penalties for the draw cards.
const (
	drawTwoPenalty  = 2
	wildFourPenalty = 4
)

// Play plays the card at index from actor's hand. chosen is the declared
// color for wilds; the empty string falls back to the configured default.
// It is ignored for colored cards.
func (s *State) Play(actor player.ID, index int, chosen deck.Color) (Outcome, error) {
	if s.phase == Ended {
		return Outcome{}, ErrGameOver
	}
	if actor != s.current {
		return Outcome{}, ErrNotYourTurn
	}

	hand := s.hands[actor]
	if index < 0 || index >= len(hand) {
		return Outcome{}, ErrInvalidCard
	}

	card := hand[index]
	if !card.Matches(s.color, s.value) {
		return Outcome{}, ErrIllegalMove
	}

	color := card.Color
	if card.IsWild() {
		switch {
		case chosen == "":
			color = s.cfg.DefaultWildColor
		case chosen.Valid():
			color = chosen
		default:
			return Outcome{}, ErrInvalidColor
		}
	}

	s.hands[actor] = slices.Delete(hand, index, index+1)
	s.discard.Push(card)
	s.color = color
	s.value = card.Value

	out := Outcome{
		Action: ActionPlayed,
		Actor:  actor,
		Card:   card,
		Color:  color,
	}

	opponent := s.Opponent(actor)
	switch card.Value {
	case deck.Skip:
		s.skipNext = true
		out.Skipped = opponent
	case deck.Reverse:
		s.direction = -s.direction
		s.skipNext = true
		out.Skipped = opponent
	case deck.DrawTwo:
		out.Penalty = s.drawInto(opponent, drawTwoPenalty)
		s.skipNext = true
		out.Skipped = opponent
	case deck.WildFour:
		out.Penalty = s.drawInto(opponent, wildFourPenalty)
		s.skipNext = true
		out.Skipped = opponent
	}

	if len(s.hands[actor]) == 0 {
		s.phase = Ended
		s.winner = actor
		s.skipNext = false
		out.Winner = actor
		return out, nil
	}

	s.advance()
	return out, nil
}

// Draw takes one card from the draw pile into actor's hand, reshuffling the
// discard pile when the draw pile is empty. The turn moves to
// AwaitingMoveOrEnd even when no card was available.
func (s *State) Draw(actor player.ID) (Outcome, error) {
	if s.phase == Ended {
		return Outcome{}, ErrGameOver
	}
	if actor != s.current {
		return Outcome{}, ErrNotYourTurn
	}
	if s.phase == AwaitingMoveOrEnd {
		return Outcome{}, ErrAlreadyDrawn
	}

	n := s.drawInto(actor, 1)
	s.phase = AwaitingMoveOrEnd

	return Outcome{
		Action: ActionDrew,
		Actor:  actor,
		Drawn:  n,
	}, nil
}

// EndTurn passes the turn after a draw. It is only valid for the current
// player in AwaitingMoveOrEnd; anything else is rejected without effect.
func (s *State) EndTurn(actor player.ID) (Outcome, error) {
	if s.phase == Ended {
		return Outcome{}, ErrGameOver
	}
	if actor != s.current {
		return Outcome{}, ErrNotYourTurn
	}
	if s.phase != AwaitingMoveOrEnd {
		return Outcome{}, ErrNotDrawn
	}

	s.advance()
	return Outcome{Action: ActionEndedTurn, Actor: actor}, nil
}

// advance hands the turn to the opponent unless a skip is pending.
func (s *State) advance() {
	if s.skipNext {
		s.skipNext = false
	} else {
		s.current = s.Opponent(s.current)
	}
	s.phase = AwaitingMove
}

// drawInto moves up to n cards into id's hand and returns how many moved.
func (s *State) drawInto(id player.ID, n int) int {
	drawn := 0
	for range n {
		if s.deck.IsEmpty() && !s.reshuffle() {
			break
		}
		card, _ := s.deck.Deal()
		s.hands[id] = append(s.hands[id], card)
		drawn++
	}
	return drawn
}

// reshuffle turns everything under the discard top into a new draw pile.
// It reports false when the discard pile had nothing to give.
func (s *State) reshuffle() bool {
	rest := s.discard.TakeBelowTop()
	if len(rest) == 0 {
		return false
	}
	s.deck = deck.NewDeck(rest...)
	s.deck.Shuffle(s.rng)
	return true
}
