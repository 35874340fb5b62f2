package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads from YAML as a string. Besides the
// units time.ParseDuration knows it accepts d (24h) and w (7d).
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: duration must be a string: %w", node.Line, err)
	}

	parsed, err := ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// ParseDuration parses "10s", "1h30m", "7d", "1w2d" and the like. "0" is
// accepted as zero.
func ParseDuration(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if !strings.ContainsAny(s, "dw") {
		return time.ParseDuration(s)
	}

	// Rewrite day and week terms as hours and let the standard parser
	// validate everything else.
	var (
		b    strings.Builder
		num  strings.Builder
		rest = s
	)
	if rest[0] == '-' || rest[0] == '+' {
		b.WriteByte(rest[0])
		rest = rest[1:]
	}

	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch {
		case (c >= '0' && c <= '9') || c == '.':
			num.WriteByte(c)
		case c == 'd' || c == 'w':
			if num.Len() == 0 {
				return 0, fmt.Errorf("invalid duration %q", raw)
			}
			n, err := strconv.ParseFloat(num.String(), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", raw)
			}
			hours := n * 24
			if c == 'w' {
				hours *= 7
			}
			b.WriteString(strconv.FormatFloat(hours, 'f', -1, 64))
			b.WriteByte('h')
			num.Reset()
		default:
			b.WriteString(num.String())
			b.WriteByte(c)
			num.Reset()
		}
	}
	if num.Len() > 0 {
		return 0, fmt.Errorf("invalid duration %q: missing unit", raw)
	}

	return time.ParseDuration(b.String())
}
