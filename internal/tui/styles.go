package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/unoduel/internal/deck"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	focusColor  = lipgloss.Color("#04B575")
	borderColor = lipgloss.Color("#626262")
)

// Card faces, one per color plus wilds.
var cardStyles = map[deck.Color]lipgloss.Style{
	deck.Red:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	deck.Blue:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4D96FF")).Bold(true),
	deck.Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77")).Bold(true),
	deck.Yellow: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D")).Bold(true),
	deck.Wild:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C77DFF")).Bold(true),
}

// DisableColor renders everything as plain text, for dumb terminals and logs.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// RenderCard formats a card in its own color.
func RenderCard(c deck.Card) string {
	return ColorStyle(c.Color).Render(c.String())
}

// ColorStyle returns the style used for cards of color.
func ColorStyle(color deck.Color) lipgloss.Style {
	if s, ok := cardStyles[color]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
