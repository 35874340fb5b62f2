package commands

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/hay-kot/whatsnew/internal/core/config"
	"github.com/hay-kot/whatsnew/internal/core/theme"
	"github.com/hay-kot/whatsnew/internal/tui"
	"github.com/hay-kot/whatsnew/internal/whatsnew/checker"
)

const fallbackWidth = 80

// notificationFor builds the card for a visible session. order is the
// repository's position in the configured list; earlier repositories get a
// higher z-index so they sit nearest the anchored corner.
func notificationFor(ctx context.Context, cfg *config.Config, s *checker.Session, t theme.Theme, order int) tui.Notification {
	return tui.Notification{
		RepositoryID:   s.RepositoryID(),
		RepositoryName: s.RepositoryName(),
		Update:         s.Update(),
		Position:       cfg.Widget.Position,
		Theme:          t,
		MaxWidth:       cfg.Widget.MaxWidth,
		ZIndex:         cfg.ZIndex() - order,
		ShowAvatar:     cfg.ShowAvatar(),
		Styles:         cfg.Widget.Styles,
		OnDismiss:      func() { s.Dismiss(ctx) },
		OnView:         func() { s.View(ctx) },
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writerWidth returns the terminal width behind w, or a fixed width when w
// is not a terminal.
func writerWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallbackWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}
