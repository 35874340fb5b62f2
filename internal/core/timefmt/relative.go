// Package timefmt formats publication timestamps for display.
package timefmt

import (
	"fmt"
	"time"
)

// Recently is returned when a timestamp cannot be parsed.
const Recently = "recently"

// DateLayout is used once an update is a week old or more.
const DateLayout = "1/2/2006"

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

// Parse reads a timestamp in any of the layouts the changelog API is known
// to emit.
func Parse(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Relative formats the timestamp string s relative to now. Unparseable input
// yields Recently.
func Relative(s string, now time.Time) string {
	t, err := Parse(s)
	if err != nil {
		return Recently
	}
	return Since(t, now)
}

// Since formats t relative to now: "just now" within the first two minutes,
// then minutes, hours and days, and a plain date after seven days.
// Timestamps in the future read as "just now".
func Since(t, now time.Time) string {
	d := now.Sub(t)

	minutes := floorDiv(d, time.Minute)
	hours := floorDiv(d, time.Hour)
	days := floorDiv(d, 24*time.Hour)

	switch {
	case minutes < 60:
		if minutes <= 1 {
			return "just now"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case hours < 24:
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case days < 7:
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.In(now.Location()).Format(DateLayout)
	}
}

func floorDiv(d, unit time.Duration) int64 {
	q := d / unit
	if d%unit < 0 {
		q--
	}
	return int64(q)
}
