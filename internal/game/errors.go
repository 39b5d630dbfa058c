package game

import "errors"

// Kind classifies a rejected intent.
type Kind int

const (
	// Internal is an unexpected failure, not attributable to the caller.
	Internal Kind = iota
	// NotFound means the referenced session does not exist.
	NotFound
	// Unauthorized means the caller lacks the host or turn ownership required.
	Unauthorized
	// Capacity means the session is full or already started.
	Capacity
	// IllegalMove means the card violates the matching rule.
	IllegalMove
	// InvalidCard means the referenced hand index does not exist.
	InvalidCard
	// StateConflict means the action does not fit the current phase.
	StateConflict
)

// String returns the string representation of a kind
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Capacity:
		return "capacity"
	case IllegalMove:
		return "illegal_move"
	case InvalidCard:
		return "invalid_card"
	case StateConflict:
		return "state_conflict"
	default:
		return "internal"
	}
}

// Error is a rejected intent. Message is safe to show to the client that sent
// the intent and never contains game state.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf returns the Kind of err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

var (
	ErrSessionNotFound = &Error{Kind: NotFound, Message: "Room not found"}
	ErrNotYourTurn     = &Error{Kind: Unauthorized, Message: "Not your turn"}
	ErrInvalidCard     = &Error{Kind: InvalidCard, Message: "Invalid card"}
	ErrIllegalMove     = &Error{Kind: IllegalMove, Message: "Card must match the current color or value"}
	ErrInvalidColor    = &Error{Kind: IllegalMove, Message: "Choose red, blue, green or yellow"}
	ErrAlreadyDrawn    = &Error{Kind: StateConflict, Message: "You already drew a card this turn"}
	ErrNotDrawn        = &Error{Kind: StateConflict, Message: "Draw a card before ending your turn"}
	ErrGameOver        = &Error{Kind: StateConflict, Message: "The game is over"}
)
