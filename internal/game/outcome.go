package game

import (
	"fmt"
	"strings"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/player"
)

// ActionType identifies what an Outcome records.
type ActionType int

const (
	ActionPlayed ActionType = iota + 1
	ActionDrew
	ActionEndedTurn
)

// Outcome describes the effect of one accepted intent.
type Outcome struct {
	Action ActionType
	Actor  player.ID

	// Card and Color are set for plays. Color is the active color afterwards.
	Card  deck.Card
	Color deck.Color

	// Penalty is how many cards the opponent actually drew from a +2 or wild+4.
	Penalty int
	// Skipped is the opponent who lost their turn, if any.
	Skipped player.ID
	// Drawn is how many cards a draw produced (0 or 1).
	Drawn int
	// Winner is set when the play emptied the actor's hand.
	Winner player.ID
}

// Won reports whether this outcome ended the game.
func (o Outcome) Won() bool {
	return o.Winner != ""
}

// Describe renders the outcome as a short sentence using names to resolve
// player IDs.
func (o Outcome) Describe(names func(player.ID) string) string {
	actor := names(o.Actor)

	switch o.Action {
	case ActionDrew:
		if o.Drawn == 0 {
			return fmt.Sprintf("%s tried to draw but no cards are left", actor)
		}
		return fmt.Sprintf("%s drew a card", actor)

	case ActionEndedTurn:
		return fmt.Sprintf("%s ended their turn", actor)

	case ActionPlayed:
		var b strings.Builder
		fmt.Fprintf(&b, "%s played %s", actor, o.Card)
		if o.Card.IsWild() {
			fmt.Fprintf(&b, " and chose %s", o.Color)
		}
		if o.Skipped != "" {
			victim := names(o.Skipped)
			if o.Penalty > 0 {
				fmt.Fprintf(&b, ", %s draws %d", victim, o.Penalty)
			}
			fmt.Fprintf(&b, ", %s is skipped", victim)
		}
		if o.Won() {
			fmt.Fprintf(&b, ". %s wins!", actor)
		}
		return b.String()
	}

	return ""
}
