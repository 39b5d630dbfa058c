package session

import (
	"github.com/lox/unoduel/internal/game"
	"github.com/lox/unoduel/internal/player"
)

// MaxParticipants is the number of players a room holds.
const MaxParticipants = 2

// Participant is a player seated in a room.
type Participant struct {
	ID   player.ID `json:"id"`
	Name string    `json:"name"`
}

// Room is one two-player session. The game is nil until the host starts it,
// so a room is started exactly when it has a game.
type Room struct {
	Code         string
	HostID       player.ID
	Participants []Participant
	game         *game.State
}

// Started reports whether the game has been dealt.
func (r *Room) Started() bool {
	return r.game != nil
}

// Game returns the room's game state, or nil before the start.
func (r *Room) Game() *game.State {
	return r.game
}

// Full reports whether the room has no free seat.
func (r *Room) Full() bool {
	return len(r.Participants) >= MaxParticipants
}

// Has reports whether id is seated in the room.
func (r *Room) Has(id player.ID) bool {
	_, ok := r.Seat(id)
	return ok
}

// Seat returns id's 1-based position: 1 for the host, 2 for the guest.
func (r *Room) Seat(id player.ID) (int, bool) {
	for i, p := range r.Participants {
		if p.ID == id {
			return i + 1, true
		}
	}
	return 0, false
}

// IDs returns the participants' IDs in seat order.
func (r *Room) IDs() []player.ID {
	ids := make([]player.ID, len(r.Participants))
	for i, p := range r.Participants {
		ids[i] = p.ID
	}
	return ids
}

// Roster returns a copy of the participant list.
func (r *Room) Roster() []Participant {
	out := make([]Participant, len(r.Participants))
	copy(out, r.Participants)
	return out
}

// Others returns the participants other than id.
func (r *Room) Others(id player.ID) []player.ID {
	var out []player.ID
	for _, p := range r.Participants {
		if p.ID != id {
			out = append(out, p.ID)
		}
	}
	return out
}

// Name returns the display name of a participant.
func (r *Room) Name(id player.ID) string {
	for _, p := range r.Participants {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}
