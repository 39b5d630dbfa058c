// Package view projects the authoritative game state into what one player is
// allowed to see: their own hand in full, the opponent's hand as a count, and
// the public pile state. Deck contents and order never leave the server.
package view

import (
	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
	"github.com/lox/unoduel/internal/player"
)

// Game is one player's masked view of a game in progress.
type Game struct {
	Hand              []deck.Card `json:"hand"`
	OpponentCardCount int         `json:"opponentCardCount"`
	DiscardTop        deck.Card   `json:"discardTop"`
	CurrentPlayer     player.ID   `json:"currentPlayer"`
	CurrentColor      deck.Color  `json:"currentColor"`
	CurrentValue      string      `json:"currentValue"`
	IsMyTurn          bool        `json:"isMyTurn"`
	CanEndTurn        bool        `json:"canEndTurn,omitempty"`
	LastAction        string      `json:"lastAction,omitempty"`
}

// Start is the view sent when a game is dealt. It adds the seating.
type Start struct {
	Game
	Player1Name string `json:"player1Name"`
	Player2Name string `json:"player2Name"`
	MyPosition  int    `json:"myPosition"`
}

// Project builds viewer's view of st.
func Project(st *game.State, viewer player.ID, lastAction string) Game {
	isMyTurn := st.Current() == viewer
	return Game{
		Hand:              st.Hand(viewer),
		OpponentCardCount: st.HandSize(st.Opponent(viewer)),
		DiscardTop:        st.DiscardTop(),
		CurrentPlayer:     st.Current(),
		CurrentColor:      st.Color(),
		CurrentValue:      st.Value(),
		IsMyTurn:          isMyTurn,
		CanEndTurn:        isMyTurn && st.HasDrawn(),
		LastAction:        lastAction,
	}
}

// ProjectStart builds viewer's opening view. names resolves display names.
func ProjectStart(st *game.State, viewer player.ID, names func(player.ID) string) Start {
	seats := st.Players()
	position := 1
	if viewer == seats[1] {
		position = 2
	}
	return Start{
		Game:        Project(st, viewer, ""),
		Player1Name: names(seats[0]),
		Player2Name: names(seats[1]),
		MyPosition:  position,
	}
}

// ForAll builds a view per player.
func ForAll(st *game.State, lastAction string) map[player.ID]Game {
	views := make(map[player.ID]Game, 2)
	for _, id := range st.Players() {
		views[id] = Project(st, id, lastAction)
	}
	return views
}
