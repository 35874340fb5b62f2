package theme

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Detector reports the host's current color scheme and notifies subscribers
// when it changes. The returned cancel func stops delivery; it is safe to
// call more than once.
type Detector interface {
	Current() Theme
	Subscribe(fn func(Theme)) (cancel func())
}

// Probe inspects the environment for a color scheme signal. ok is false when
// no signal is available.
type Probe func() (t Theme, ok bool)

// DefaultPollInterval is how often a PollingDetector re-probes while it has
// subscribers.
const DefaultPollInterval = 5 * time.Second

// Static is a Detector that always reports the same theme and never changes.
type Static Theme

func (s Static) Current() Theme {
	if Theme(s) == Dark {
		return Dark
	}
	return Light
}

func (s Static) Subscribe(func(Theme)) func() { return func() {} }

// PollingDetector derives the theme from a chain of probes and re-runs them
// on an interval while subscribed. Without any signal it reports light.
type PollingDetector struct {
	probes   []Probe
	interval time.Duration
}

var _ Detector = (*PollingDetector)(nil)

// NewPollingDetector builds a detector that consults probes in order and uses
// the first one with a signal.
func NewPollingDetector(interval time.Duration, probes ...Probe) *PollingDetector {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollingDetector{probes: probes, interval: interval}
}

func (d *PollingDetector) Current() Theme {
	for _, p := range d.probes {
		if p == nil {
			continue
		}
		if t, ok := p(); ok && (t == Light || t == Dark) {
			return t
		}
	}
	return Light
}

// Subscribe calls fn each time the detected theme differs from the previous
// observation. The first observation is taken at subscribe time and is not
// delivered.
func (d *PollingDetector) Subscribe(fn func(Theme)) func() {
	done := make(chan struct{})
	last := d.Current()

	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				cur := d.Current()
				if cur == last {
					continue
				}
				last = cur
				select {
				case <-done:
					return
				default:
					fn(cur)
				}
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// EnvProbe reads an explicit override from the named variable, accepting
// "light" or "dark".
func EnvProbe(getenv func(string) string, name string) Probe {
	return func() (Theme, bool) {
		switch t := Theme(strings.ToLower(strings.TrimSpace(getenv(name)))); t {
		case Light, Dark:
			return t, true
		}
		return "", false
	}
}

// ColorFGBGProbe interprets the COLORFGBG convention ("fg;bg") set by rxvt,
// konsole and several other terminals. Background colors 0-6 and 8 are dark.
func ColorFGBGProbe(getenv func(string) string) Probe {
	return func() (Theme, bool) {
		v := getenv("COLORFGBG")
		if v == "" {
			return "", false
		}
		parts := strings.Split(v, ";")
		bg, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			return "", false
		}
		if (bg >= 0 && bg <= 6) || bg == 8 {
			return Dark, true
		}
		return Light, true
	}
}

// TerminalProbe queries the terminal background through lipgloss. It only
// reports a signal when out is attached to a terminal.
func TerminalProbe(out *os.File) Probe {
	return func() (Theme, bool) {
		if out == nil || !term.IsTerminal(int(out.Fd())) {
			return "", false
		}
		if lipgloss.HasDarkBackground() {
			return Dark, true
		}
		return Light, true
	}
}

// NewHostDetector returns the detector used by the CLI: an explicit
// WHATSNEW_COLOR_SCHEME override, then COLORFGBG, then the terminal itself.
// None of these change while the process runs (lipgloss caches the terminal
// answer), so the result is a snapshot; live following needs a Detector
// whose probes can change, such as NewPollingDetector.
func NewHostDetector(out *os.File) Detector {
	host := NewPollingDetector(DefaultPollInterval,
		EnvProbe(os.Getenv, "WHATSNEW_COLOR_SCHEME"),
		ColorFGBGProbe(os.Getenv),
		TerminalProbe(out),
	)
	return Static(host.Current())
}
