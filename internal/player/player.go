package player

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID identifies a connected player. It is minted per connection and is
// independent of any transport handle.
type ID string

// NewID mints a fresh player ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// String returns the string representation of an ID
func (id ID) String() string {
	return string(id)
}

// Short returns an abbreviated form suitable for default names and logs.
func (id ID) Short() string {
	s := strings.ReplaceAll(string(id), "-", "")
	if len(s) > 4 {
		return s[:4]
	}
	return s
}

// MaxNameLength caps display names.
const MaxNameLength = 24

// Player is a directory entry for a live connection.
type Player struct {
	ID       ID
	Name     string
	RoomCode string
}

// InRoom reports whether the player currently belongs to a room.
func (p *Player) InRoom() bool {
	return p.RoomCode != ""
}

// NormalizeName trims a requested display name, falling back to a name
// derived from the ID when nothing usable was supplied.
func NormalizeName(id ID, name string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	if name == "" {
		return fmt.Sprintf("Player-%s", id.Short())
	}
	return name
}
