package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/hay-kot/whatsnew/internal/core/styles"
	"github.com/hay-kot/whatsnew/internal/core/theme"
	"github.com/hay-kot/whatsnew/internal/core/timefmt"
	"github.com/hay-kot/whatsnew/internal/whatsnew/api"
)

const (
	DefaultMaxWidth = 400
	DefaultZIndex   = 1000

	minCardWidth = 24
	screenMargin = 1
)

// Notification is a single what's-new card and the callbacks fired when the
// user responds to it.
type Notification struct {
	RepositoryID   string
	RepositoryName string
	Update         *api.Update

	Position   styles.Position
	Theme      theme.Theme
	MaxWidth   int
	ZIndex     int
	ShowAvatar bool
	Styles     styles.Overrides

	OnDismiss func()
	OnView    func()
}

// Width returns the outer card width for a terminal of termWidth cells. A
// width style override takes precedence over MaxWidth. termWidth <= 0 means
// the terminal size is unknown.
func (n Notification) Width(termWidth int) int {
	w := n.MaxWidth
	if w <= 0 {
		w = DefaultMaxWidth
	}
	if ow := n.Styles.Width(); ow > 0 {
		w = ow
	}
	if termWidth > 0 {
		w = min(w, termWidth-2*screenMargin)
	}
	return max(w, minCardWidth)
}

// Render draws the card. footer is shown under the body when non-empty and
// focused highlights the border.
func (n Notification) Render(termWidth int, now time.Time, footer string, focused bool) string {
	card := styles.NewCard(n.Theme, n.Styles)
	frame := card.Frame
	if focused {
		frame = frame.BorderForeground(card.Palette.Primary)
	}

	width := n.Width(termWidth)
	inner := max(width-frame.GetHorizontalFrameSize(), 1)

	u := n.Update
	if u == nil {
		u = &api.Update{}
	}

	sections := []string{n.header(card, u, inner), n.meta(card, u, now, inner)}

	if body := renderMarkdown(u.Summary, card, n.Styles, inner); body != "" {
		sections = append(sections, "", body)
	}

	if n.ShowAvatar && u.Author != nil && u.Author.Name != "" {
		sections = append(sections, "", card.Author.Render(ansi.Truncate("by "+u.Author.Name, inner, "…")))
	}

	if footer != "" {
		sections = append(sections, "", footer)
	}

	return frame.Width(width - frame.GetHorizontalBorderSize()).Render(strings.Join(sections, "\n"))
}

func (n Notification) header(card styles.Card, u *api.Update, width int) string {
	prefix := card.Meta.Render(styles.IconBell) + " "
	if n.ShowAvatar {
		name := n.RepositoryName
		if u.Author != nil && u.Author.Name != "" {
			name = u.Author.Name
		}
		if badge := card.Badge(name); badge != "" {
			prefix = badge + " "
		}
	}

	title := u.Title
	if title == "" {
		title = "What's new"
	}
	avail := max(width-lipgloss.Width(prefix), 1)
	return prefix + card.Title.Render(ansi.Truncate(title, avail, "…"))
}

func (n Notification) meta(card styles.Card, u *api.Update, now time.Time, width int) string {
	parts := []string{timefmt.Relative(u.PublishedAt, now)}
	if n.RepositoryName != "" {
		parts = append(parts, n.RepositoryName)
	}
	return card.Meta.Render(ansi.Truncate(strings.Join(parts, " · "), width, "…"))
}
