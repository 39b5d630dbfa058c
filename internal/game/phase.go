package game

// Phase is the turn state of a started game.
type Phase int

const (
	// AwaitingMove: the current player may play or draw.
	AwaitingMove Phase = iota
	// AwaitingMoveOrEnd: the current player has drawn and may play or end the turn.
	AwaitingMoveOrEnd
	// Ended: someone emptied their hand.
	Ended
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case AwaitingMove:
		return "awaiting_move"
	case AwaitingMoveOrEnd:
		return "awaiting_move_or_end"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}
