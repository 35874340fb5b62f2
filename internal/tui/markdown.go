package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog/log"

	"github.com/hay-kot/whatsnew/internal/core/styles"
	"github.com/hay-kot/whatsnew/internal/core/theme"
)

// maxRenderers bounds the renderer cache; resizing produces a new width
// each time.
const maxRenderers = 16

type rendererKey struct {
	theme  theme.Theme
	fg, bg string
	width  int
}

// markdownRenderers caches glamour renderers per theme, color override and
// width. A TermRenderer is not safe for concurrent use, so rendering holds
// the lock.
type markdownRenderers struct {
	mu      sync.Mutex
	entries map[rendererKey]*glamour.TermRenderer
}

var summaries = &markdownRenderers{entries: map[rendererKey]*glamour.TermRenderer{}}

func (r *markdownRenderers) render(src string, t theme.Theme, o styles.Overrides, width int) (string, error) {
	key := rendererKey{theme: t, fg: o[styles.KeyForeground], bg: o[styles.KeyBackground], width: width}

	r.mu.Lock()
	defer r.mu.Unlock()

	tr, ok := r.entries[key]
	if !ok {
		var err error
		tr, err = glamour.NewTermRenderer(
			glamour.WithStyles(styles.GlamourStyle(t, o)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		if len(r.entries) >= maxRenderers {
			clear(r.entries)
		}
		r.entries[key] = tr
	}

	return tr.Render(src)
}

func (r *markdownRenderers) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// renderMarkdown renders an update summary for the card's theme, color
// overrides and wrap width. Rendering failures fall back to the plain text
// in the card body style.
func renderMarkdown(src string, card styles.Card, o styles.Overrides, width int) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	width = max(width, 1)

	rendered, err := summaries.render(src, card.Theme, o, width)
	if err != nil {
		log.Debug().Err(err).Msg("failed to render markdown, showing raw summary")
		return card.Body.Width(width).Render(src)
	}

	return trimLines(rendered)
}

// trimLines drops the blank lines glamour adds around the document and the
// padding it writes at the end of each line. Glamour styles every padding
// space separately, so blankness and width are measured on the stripped
// text and the styled line is cut to that width.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		visible := strings.TrimRight(ansi.Strip(line), " ")
		lines[i] = ansi.Truncate(line, ansi.StringWidth(visible), "")
	}

	start, end := 0, len(lines)
	for start < end && ansi.Strip(lines[start]) == "" {
		start++
	}
	for end > start && ansi.Strip(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
