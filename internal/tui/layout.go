package tui

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/whatsnew/internal/core/styles"
)

// Place positions content in the given corner of a width x height screen.
// An unknown screen size returns content unchanged.
func Place(content string, pos styles.Position, width, height int) string {
	if width <= 0 || height <= 0 {
		return content
	}
	h, v := pos.Align()
	return lipgloss.Place(width, height, h, v, content)
}

// joinStack renders cards so that the highest z-index sits nearest the
// anchored edge. rendered must be in Stack order.
func joinStack(rendered []string, pos styles.Position) string {
	if !pos.Top() {
		rendered = slices.Clone(rendered)
		slices.Reverse(rendered)
	}
	h, _ := pos.Align()
	return lipgloss.JoinVertical(h, rendered...)
}

// RenderStatic renders cards for non-interactive output, without focus or
// key help.
func RenderStatic(cards []Notification, width int, now time.Time) string {
	if len(cards) == 0 {
		return ""
	}
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Render(width, now, "", false))
	}
	return strings.Join(out, "\n")
}
