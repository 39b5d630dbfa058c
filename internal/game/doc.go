// Package game implements the authoritative rules for a two-player game of
// UNO.
//
// The main type is State, which owns the draw pile, the discard pile, both
// hands and whose turn it is. A State is created by New, which deals from a
// freshly shuffled deck, and is then advanced only by Play, Draw and EndTurn.
// Every rejected call returns an *Error and leaves the state untouched.
//
// # Turn phases
//
// The turn is an explicit tagged Phase rather than a set of flags:
//
//	AwaitingMove(P)       --Draw-->            AwaitingMoveOrEnd(P)
//	AwaitingMove(P)       --Play-->            AwaitingMove(P or opponent)
//	AwaitingMoveOrEnd(P)  --Play or EndTurn--> AwaitingMove(P or opponent)
//	any                   --Play empties hand--> Ended(P)
//
// # Deterministic Testing
//
// New takes a randutil.Source so tests can fix the shuffle:
//
//	st, err := game.New(host, guest, randutil.New(42), game.DefaultConfig())
//
// NewFromDeck skips dealing entirely and is used by tests that need a
// specific arrangement of cards.
//
// A State is not safe for concurrent use. The server serializes all intents
// through a single goroutine.
package game
