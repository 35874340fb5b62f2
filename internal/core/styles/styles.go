// Package styles provides the lipgloss styles used to draw notification
// cards in the CLI and TUI.
package styles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/whatsnew/internal/core/theme"
)

// Override keys accepted in the widget style map.
const (
	KeyForeground  = "foreground"
	KeyBackground  = "background"
	KeyBorderColor = "border_color"
	KeyPadding     = "padding"
	KeyWidth       = "width"
	KeyBold        = "bold"
)

// OverrideKeys lists every recognized style override key.
func OverrideKeys() []string {
	return []string{KeyForeground, KeyBackground, KeyBorderColor, KeyPadding, KeyWidth, KeyBold}
}

// Overrides are user-supplied adjustments applied on top of the palette.
type Overrides map[string]string

// Validate reports the first unknown key or malformed value.
func (o Overrides) Validate() error {
	for k, v := range o {
		switch k {
		case KeyForeground, KeyBackground, KeyBorderColor:
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("%s: color must not be empty", k)
			}
		case KeyPadding:
			if _, err := parsePadding(v); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		case KeyWidth:
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("%s: expected a positive integer, got %q", k, v)
			}
		case KeyBold:
			if _, err := strconv.ParseBool(v); err != nil {
				return fmt.Errorf("%s: expected true or false, got %q", k, v)
			}
		default:
			return fmt.Errorf("unknown style key %q", k)
		}
	}
	return nil
}

// Width returns the width override, or 0 when none is set.
func (o Overrides) Width() int {
	n, err := strconv.Atoi(o[KeyWidth])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parsePadding accepts one, two or four space separated integers, in the
// same order lipgloss.Padding takes them.
func parsePadding(v string) ([]int, error) {
	fields := strings.Fields(v)
	switch len(fields) {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("expected 1, 2 or 4 values, got %q", v)
	}

	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid padding value %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

// Card holds the styles for one notification card.
type Card struct {
	Theme   theme.Theme
	Palette Palette

	Frame    lipgloss.Style
	Title    lipgloss.Style
	Meta     lipgloss.Style
	Body     lipgloss.Style
	Author   lipgloss.Style
	badgeFmt lipgloss.Style
}

// NewCard builds card styles for a resolved theme with overrides applied.
// Invalid override values are ignored; call Overrides.Validate up front to
// report them.
func NewCard(t theme.Theme, o Overrides) Card {
	p := PaletteFor(t)

	fg := p.Foreground
	if v := o[KeyForeground]; v != "" {
		fg = lipgloss.Color(v)
	}
	bg := p.Background
	if v := o[KeyBackground]; v != "" {
		bg = lipgloss.Color(v)
	}
	border := p.Border
	if v := o[KeyBorderColor]; v != "" {
		border = lipgloss.Color(v)
	}

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(fg).
		Padding(0, 1)

	if _, ok := o[KeyBackground]; ok {
		frame = frame.Background(bg)
	}
	if pad, err := parsePadding(o[KeyPadding]); err == nil {
		frame = frame.Padding(pad...)
	}

	body := lipgloss.NewStyle().Foreground(fg)
	if _, ok := o[KeyBackground]; ok {
		body = body.Background(bg)
	}

	title := lipgloss.NewStyle().Foreground(fg).Bold(true)
	if b, err := strconv.ParseBool(o[KeyBold]); err == nil {
		title = title.Bold(b)
	}

	return Card{
		Theme:    t,
		Palette:  p,
		Frame:    frame,
		Title:    title,
		Meta:     lipgloss.NewStyle().Foreground(p.Muted),
		Body:     body,
		Author:   lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		badgeFmt: lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#ffffff")),
	}
}

// Badge renders an initials badge for name, the terminal stand-in for an
// avatar image.
func (c Card) Badge(name string) string {
	initials := Initials(name)
	if initials == "" {
		return ""
	}
	return c.badgeFmt.Background(BadgeColor(name, c.Theme)).Render(initials)
}

// Initials returns up to two uppercase initials for a display name.
func Initials(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/' || r == '.'
	})

	var b strings.Builder
	for i, f := range fields {
		if i == 2 {
			break
		}
		r := []rune(f)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}
