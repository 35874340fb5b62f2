package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/whatsnew/internal/core/styles"
	"github.com/hay-kot/whatsnew/internal/core/theme"
	"github.com/hay-kot/whatsnew/internal/whatsnew/api"
	"github.com/hay-kot/whatsnew/pkg/tuitest"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testNotification() Notification {
	return Notification{
		RepositoryID:   "demo",
		RepositoryName: "Demo App",
		Update: &api.Update{
			ID:          "u1",
			Title:       "Dark mode is here",
			Summary:     "Faster **builds** and a new theme.",
			PublishedAt: fixedNow.Add(-2 * time.Hour).Format(time.RFC3339),
			URL:         "https://example.com/changelog/u1",
			Author:      &api.Person{Name: "Ada Lovelace"},
		},
		Position:   styles.BottomRight,
		Theme:      theme.Light,
		MaxWidth:   DefaultMaxWidth,
		ZIndex:     DefaultZIndex,
		ShowAvatar: true,
	}
}

func TestNotification_Render(t *testing.T) {
	out := tuitest.StripANSI(testNotification().Render(80, fixedNow, "", false))

	assert.Contains(t, out, "Dark mode is here")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "Demo App")
	assert.Contains(t, out, "Faster")
	assert.Contains(t, out, "builds")
	assert.Contains(t, out, "by Ada Lovelace")
	assert.Contains(t, out, "AL")
	assert.NotContains(t, out, "**")
}

func TestNotification_RenderWithoutAvatar(t *testing.T) {
	n := testNotification()
	n.ShowAvatar = false

	out := tuitest.StripANSI(n.Render(80, fixedNow, "", false))
	assert.NotContains(t, out, "by Ada Lovelace")
	assert.Contains(t, out, styles.IconBell)
}

func TestNotification_RenderUnparseableDate(t *testing.T) {
	n := testNotification()
	n.Update.PublishedAt = "not-a-date"

	out := tuitest.StripANSI(n.Render(80, fixedNow, "", false))
	assert.Contains(t, out, "recently")
}

func TestNotification_RenderFooter(t *testing.T) {
	out := tuitest.StripANSI(testNotification().Render(80, fixedNow, "d dismiss", true))
	assert.Contains(t, out, "d dismiss")
}

func TestNotification_RenderFitsWidth(t *testing.T) {
	n := testNotification()
	n.MaxWidth = 40
	n.Update.Title = "An extremely long title that cannot possibly fit on a single line of the card"

	out := n.Render(200, fixedNow, "", false)
	for _, line := range strings.Split(tuitest.StripANSI(out), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 40, line)
	}
}

func TestNotification_Width(t *testing.T) {
	tests := []struct {
		name     string
		maxWidth int
		override string
		term     int
		want     int
	}{
		{"default", 0, "", 0, DefaultMaxWidth},
		{"max width", 50, "", 200, 50},
		{"clamped to terminal", 400, "", 60, 58},
		{"style override", 400, "30", 200, 30},
		{"minimum", 400, "", 10, minCardWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notification{MaxWidth: tt.maxWidth}
			if tt.override != "" {
				n.Styles = styles.Overrides{styles.KeyWidth: tt.override}
			}
			assert.Equal(t, tt.want, n.Width(tt.term))
		})
	}
}

// sgrBefore returns the run of SGR sequences directly preceding the first
// occurrence of word in raw.
func sgrBefore(t *testing.T, raw, word string) string {
	t.Helper()
	idx := strings.Index(raw, word)
	require.GreaterOrEqual(t, idx, 0, "%q not found", word)

	seg, run := raw[:idx], ""
	for strings.HasSuffix(seg, "m") {
		j := strings.LastIndex(seg, "\x1b[")
		if j < 0 || strings.Trim(seg[j+2:len(seg)-1], "0123456789;") != "" {
			break
		}
		run = seg[j:] + run
		seg = seg[:j]
	}
	return run
}

func TestNotification_SummaryUsesForegroundOverride(t *testing.T) {
	n := testNotification()
	n.Styles = styles.Overrides{styles.KeyForeground: "#ff0000"}

	raw := n.Render(80, fixedNow, "", false)
	assert.Contains(t, sgrBefore(t, raw, "Faster"), "38;2;255;0;0")
}

func TestNotification_SummaryUsesBackgroundOverride(t *testing.T) {
	n := testNotification()
	n.Styles = styles.Overrides{styles.KeyBackground: "#0000ff"}

	raw := n.Render(80, fixedNow, "", false)
	assert.Contains(t, sgrBefore(t, raw, "Faster"), "48;2;0;0;255")

	start := strings.Index(raw, "Faster") + len("Faster")
	end := strings.Index(raw, "builds")
	require.Greater(t, end, start)
	assert.Contains(t, raw[start:end], "48;2;0;0;255", "space between words keeps the background")
}

func TestNotification_ReusesMarkdownRenderer(t *testing.T) {
	n := testNotification()
	n.Render(73, fixedNow, "", false)
	before := summaries.len()

	for range 5 {
		n.Render(73, fixedNow, "", true)
	}
	assert.Equal(t, before, summaries.len())

	for w := 30; w < 30+2*maxRenderers; w++ {
		n.Render(w, fixedNow, "", false)
	}
	assert.LessOrEqual(t, summaries.len(), maxRenderers)
}

func TestTrimLines(t *testing.T) {
	pad := "\x1b[38;2;1;2;3m \x1b[0m"
	in := strings.Join([]string{
		pad + pad,
		"\x1b[38;2;1;2;3mhello\x1b[0m" + pad + pad,
		"\x1b[38;2;1;2;3mworld\x1b[0m" + pad,
		pad,
	}, "\n")

	out := trimLines(in)
	assert.Equal(t, "hello\nworld", ansi.Strip(out))
	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, 5, ansi.StringWidth(line))
	}
	assert.Contains(t, out, "\x1b[38;2;1;2;3mhello")
}
