package deck

import (
	"fmt"
	"strings"
)

// Color represents a card color. Wild-family cards carry Wild.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
	Wild   Color = "wild"
)

// Colors lists the four playable colors in deck-building order.
var Colors = []Color{Red, Blue, Green, Yellow}

// String returns the string representation of a color
func (c Color) String() string {
	return string(c)
}

// Valid reports whether c is one of the four colors a wild can be declared as.
func (c Color) Valid() bool {
	switch c {
	case Red, Blue, Green, Yellow:
		return true
	default:
		return false
	}
}

// ParseColor parses a declarable color, case-insensitively.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid color: %q", s)
	}
	return c, nil
}

// Kind classifies a card by how it behaves when played.
type Kind string

const (
	Number   Kind = "number"
	Action   Kind = "action"
	WildKind Kind = "wild"
)

// Card values beyond the digits.
const (
	Skip     = "skip"
	Reverse  = "reverse"
	DrawTwo  = "+2"
	WildCard = "wild"
	WildFour = "wild+4"
)

// Card represents a single card. Cards are plain values and never mutated.
type Card struct {
	Color Color  `json:"color"`
	Value string `json:"value"`
	Kind  Kind   `json:"kind"`
}

// NewNumber creates a number card
func NewNumber(color Color, n int) Card {
	return Card{Color: color, Value: fmt.Sprint(n), Kind: Number}
}

// NewAction creates a skip, reverse or +2 card
func NewAction(color Color, value string) Card {
	return Card{Color: color, Value: value, Kind: Action}
}

// NewWild creates a wild or wild+4 card
func NewWild(value string) Card {
	return Card{Color: Wild, Value: value, Kind: WildKind}
}

// String returns the string representation of a card (e.g., "red 7", "wild+4")
func (c Card) String() string {
	if c.Kind == WildKind {
		return c.Value
	}
	return fmt.Sprintf("%s %s", c.Color, c.Value)
}

// IsWild returns true for wild and wild+4
func (c Card) IsWild() bool {
	return c.Kind == WildKind
}

// IsNumber returns true for plain number cards
func (c Card) IsNumber() bool {
	return c.Kind == Number
}

// Matches reports whether c may be played onto a pile whose active color and
// value are the given ones.
func (c Card) Matches(color Color, value string) bool {
	return c.IsWild() || c.Color == color || c.Value == value
}
