package styles

import (
	"hash/fnv"

	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/hay-kot/whatsnew/internal/core/theme"
)

// Palette defines a minimal semantic palette for the notification card.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color
}

var palettes = map[theme.Theme]Palette{
	theme.Light: {
		Primary:    lipgloss.Color("#2e7de9"),
		Secondary:  lipgloss.Color("#007197"),
		Foreground: lipgloss.Color("#1f2937"),
		Muted:      lipgloss.Color("#6b7280"),
		Background: lipgloss.Color("#ffffff"),
		Surface:    lipgloss.Color("#f3f4f6"),
		Border:     lipgloss.Color("#e5e7eb"),
	},
	theme.Dark: {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#3b4261"),
	},
}

// PaletteFor returns the palette for a resolved theme. Anything other than
// dark gets the light palette.
func PaletteFor(t theme.Theme) Palette {
	if t == theme.Dark {
		return palettes[theme.Dark]
	}
	return palettes[theme.Light]
}

// BadgeColor picks a stable background color for an initials badge so the
// same author always gets the same color. Lightness follows the theme.
func BadgeColor(name string, t theme.Theme) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	hue := float64(h.Sum32() % 360)

	l := 0.45
	if t == theme.Dark {
		l = 0.65
	}
	return lipgloss.Color(colorful.Hcl(hue, 0.5, l).Clamped().Hex())
}

func ptr(c lipgloss.Color) *string {
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config for rendering update summaries
// that matches the card palette. Margins are removed so the summary sits
// flush inside the card padding. Foreground and background overrides are
// applied to the document and paragraph blocks, which inline text inherits.
func GlamourStyle(t theme.Theme, o Overrides) ansi.StyleConfig {
	cfg := glamourstyles.LightStyleConfig
	if t == theme.Dark {
		cfg = glamourstyles.DarkStyleConfig
	}
	p := PaletteFor(t)

	var zero uint
	cfg.Document.Margin = &zero
	cfg.Document.BlockPrefix = ""
	cfg.Document.BlockSuffix = ""
	cfg.Document.Color = ptr(p.Foreground)
	cfg.Paragraph.Color = ptr(p.Foreground)

	cfg.Heading.Color = ptr(p.Primary)
	cfg.H1.Color = ptr(p.Foreground)
	cfg.H1.BackgroundColor = ptr(p.Surface)

	cfg.BlockQuote.Color = ptr(p.Muted)
	cfg.HorizontalRule.Color = ptr(p.Muted)
	cfg.Link.Color = ptr(p.Secondary)
	cfg.LinkText.Color = ptr(p.Secondary)
	cfg.Code.Color = ptr(p.Secondary)

	if v := o[KeyForeground]; v != "" {
		cfg.Document.Color = &v
		cfg.Paragraph.Color = &v
		cfg.Text.Color = &v
	}
	if v := o[KeyBackground]; v != "" {
		cfg.Document.BackgroundColor = &v
		cfg.Paragraph.BackgroundColor = &v
		cfg.Text.BackgroundColor = &v
	}

	return cfg
}
