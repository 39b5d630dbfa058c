package player

import (
	"fmt"
)

// Directory maps live player IDs to their entries. Entries are created when a
// connection registers and removed when it goes away. It is not safe for
// concurrent use; the hub goroutine owns it.
type Directory struct {
	players map[ID]*Player
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{players: make(map[ID]*Player)}
}

// Register adds a player with the given display name and returns the entry.
func (d *Directory) Register(id ID, name string) *Player {
	p := &Player{ID: id, Name: NormalizeName(id, name)}
	d.players[id] = p
	return p
}

// Remove deletes the player's entry and returns it, if present.
func (d *Directory) Remove(id ID) (*Player, bool) {
	p, ok := d.players[id]
	if ok {
		delete(d.players, id)
	}
	return p, ok
}

// Get returns the entry for id.
func (d *Directory) Get(id ID) (*Player, bool) {
	p, ok := d.players[id]
	return p, ok
}

// Name returns the display name for id, or the empty string.
func (d *Directory) Name(id ID) string {
	if p, ok := d.players[id]; ok {
		return p.Name
	}
	return ""
}

// Rename changes a player's display name.
func (d *Directory) Rename(id ID, name string) (*Player, error) {
	p, ok := d.players[id]
	if !ok {
		return nil, fmt.Errorf("player not found: %s", id)
	}
	p.Name = NormalizeName(id, name)
	return p, nil
}

// SetRoom records the room a player has entered.
func (d *Directory) SetRoom(id ID, code string) {
	if p, ok := d.players[id]; ok {
		p.RoomCode = code
	}
}

// ClearRoom drops the player's room membership.
func (d *Directory) ClearRoom(id ID) {
	if p, ok := d.players[id]; ok {
		p.RoomCode = ""
	}
}

// Len returns the number of registered players
func (d *Directory) Len() int {
	return len(d.players)
}
