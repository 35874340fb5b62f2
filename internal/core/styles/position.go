package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Position is the terminal corner a notification card is anchored to.
type Position string

const (
	BottomRight Position = "bottom-right"
	BottomLeft  Position = "bottom-left"
	TopRight    Position = "top-right"
	TopLeft     Position = "top-left"
)

// DefaultPosition is used when nothing is configured.
const DefaultPosition = BottomRight

// Positions returns every supported corner.
func Positions() []Position {
	return []Position{BottomRight, BottomLeft, TopRight, TopLeft}
}

// ParsePosition converts a configuration string into a Position. The empty
// string maps to DefaultPosition.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return DefaultPosition, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("unknown position %q (want bottom-right, bottom-left, top-right or top-left)", s)
	}
	return p, nil
}

// IsValid reports whether p is a supported corner.
func (p Position) IsValid() bool {
	switch p {
	case BottomRight, BottomLeft, TopRight, TopLeft:
		return true
	}
	return false
}

// Top reports whether the card is anchored to the top edge.
func (p Position) Top() bool {
	return p == TopRight || p == TopLeft
}

// Align returns the lipgloss horizontal and vertical alignment for the
// corner, ready for lipgloss.Place.
func (p Position) Align() (h, v lipgloss.Position) {
	h, v = lipgloss.Right, lipgloss.Bottom
	switch p {
	case BottomLeft:
		h = lipgloss.Left
	case TopRight:
		v = lipgloss.Top
	case TopLeft:
		h, v = lipgloss.Left, lipgloss.Top
	}
	return h, v
}
