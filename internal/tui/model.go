// Package tui implements the Bubble Tea notification surface for whatsnew.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hay-kot/whatsnew/internal/core/logging"
	"github.com/hay-kot/whatsnew/internal/core/styles"
	"github.com/hay-kot/whatsnew/internal/core/theme"
)

// CheckFunc runs one check cycle and returns the card to show, if any. It
// must honor ctx cancellation.
type CheckFunc func(ctx context.Context) (Notification, bool)

// URLOpener opens an update link in the user's browser.
type URLOpener interface {
	Open(ctx context.Context, target string) error
}

// Options configures a Model.
type Options struct {
	Checks   []CheckFunc
	Position styles.Position
	// Theme is the configured theme. Auto follows Detector.
	Theme    theme.Theme
	Detector theme.Detector
	Opener   URLOpener
	Now      func() time.Time
}

type (
	checkResultMsg struct {
		n  Notification
		ok bool
	}
	themeChangedMsg theme.Theme
	openedMsg       struct{ err error }
)

// Model shows the notification stack until every card is answered or the
// user quits.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	checks  []CheckFunc
	pending int
	stack   Stack

	position styles.Position
	themeCfg theme.Theme
	resolved theme.Theme
	themeCh  chan theme.Theme
	unsub    func()

	opener URLOpener
	now    func() time.Time
	keys   KeyMap
	help   help.Model
	log    zerolog.Logger

	width, height int
	quitting      bool
}

// New creates the model. Theme subscriptions start here and are released by
// Close, which the model also calls when it quits.
func New(ctx context.Context, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)

	pos := opts.Position
	if !pos.IsValid() {
		pos = styles.BottomRight
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := &Model{
		ctx:      ctx,
		cancel:   cancel,
		checks:   opts.Checks,
		pending:  len(opts.Checks),
		position: pos,
		themeCfg: opts.Theme,
		resolved: opts.Theme.Resolve(opts.Detector),
		opener:   opts.Opener,
		now:      now,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		log:      logging.Component("tui"),
	}

	if opts.Theme == theme.Auto && opts.Detector != nil {
		m.themeCh = make(chan theme.Theme, 1)
		m.unsub = opts.Detector.Subscribe(func(t theme.Theme) {
			select {
			case <-m.themeCh:
			default:
			}
			select {
			case m.themeCh <- t:
			default:
			}
		})
	}

	return m
}

// Close cancels in-flight checks and stops theme tracking. Safe to call more
// than once.
func (m *Model) Close() {
	m.cancel()
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

// Theme returns the theme currently applied to the cards.
func (m *Model) Theme() theme.Theme { return m.resolved }

// Stack exposes the visible cards.
func (m *Model) Stack() *Stack { return &m.stack }

func (m *Model) Init() tea.Cmd {
	if len(m.checks) == 0 {
		return m.quit()
	}

	cmds := make([]tea.Cmd, 0, len(m.checks)+1)
	for _, check := range m.checks {
		cmds = append(cmds, m.runCheck(check))
	}
	cmds = append(cmds, m.waitForTheme())
	return tea.Batch(cmds...)
}

func (m *Model) runCheck(check CheckFunc) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		n, ok := check(ctx)
		return checkResultMsg{n: n, ok: ok}
	}
}

func (m *Model) waitForTheme() tea.Cmd {
	if m.themeCh == nil {
		return nil
	}
	ch, ctx := m.themeCh, m.ctx
	return func() tea.Msg {
		select {
		case t := <-ch:
			return themeChangedMsg(t)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case checkResultMsg:
		m.pending--
		if msg.ok {
			msg.n.Theme = m.resolved
			if !msg.n.Position.IsValid() {
				msg.n.Position = m.position
			}
			m.stack.Push(msg.n)
		}
		return m, m.quitIfDone()

	case themeChangedMsg:
		t := theme.Theme(msg)
		if t != m.resolved {
			m.log.Debug().Str("theme", t.String()).Msg("theme changed")
			m.resolved = t
			m.stack.SetTheme(t)
		}
		return m, m.waitForTheme()

	case openedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("failed to open update link")
		}
		return m, m.quitIfDone()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Dismiss):
		n, ok := m.stack.Remove()
		if !ok {
			return nil
		}
		if n.OnDismiss != nil {
			n.OnDismiss()
		}
		return m.quitIfDone()

	case key.Matches(msg, m.keys.View):
		n, ok := m.stack.Remove()
		if !ok {
			return nil
		}
		if n.OnView != nil {
			n.OnView()
		}
		return m.open(n)

	case key.Matches(msg, m.keys.Next):
		m.stack.Next()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) open(n Notification) tea.Cmd {
	if m.opener == nil || n.Update == nil || n.Update.URL == "" {
		return m.quitIfDone()
	}
	opener, ctx, target := m.opener, m.ctx, n.Update.URL
	return func() tea.Msg {
		return openedMsg{err: opener.Open(ctx, target)}
	}
}

func (m *Model) quitIfDone() tea.Cmd {
	if m.pending > 0 || m.stack.Len() > 0 {
		return nil
	}
	return m.quit()
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.Close()
	return tea.Quit
}

func (m *Model) View() string {
	if m.quitting || m.stack.Len() == 0 {
		return ""
	}
	// Card width and corner depend on the screen size.
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	cards := m.stack.Cards()
	now := m.now()
	multi := len(cards) > 1
	rendered := make([]string, 0, len(cards))
	for i, c := range cards {
		focused := i == m.stack.FocusIndex()
		footer := ""
		if focused {
			footer = m.help.View(m.keys)
		}
		rendered = append(rendered, c.Render(m.width, now, footer, focused && multi))
	}

	return Place(joinStack(rendered, m.position), m.position, m.width, m.height)
}
