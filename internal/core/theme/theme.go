// Package theme resolves the light/dark appearance of the notification card
// and lets a surface follow changes to the host terminal's color scheme.
package theme

import (
	"fmt"
	"strings"
)

// Theme is a color scheme preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
	Auto  Theme = "auto"
)

// Default is used when nothing is configured.
const Default = Auto

// All returns the accepted theme values in display order.
func All() []Theme {
	return []Theme{Auto, Light, Dark}
}

// Parse converts a configuration string into a Theme. The empty string maps
// to Default.
func Parse(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return Default, nil
	case Light, Dark, Auto:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want light, dark or auto)", s)
	}
}

// IsValid reports whether t is one of the known themes.
func (t Theme) IsValid() bool {
	return t == Light || t == Dark || t == Auto
}

func (t Theme) String() string { return string(t) }

// Resolve returns a concrete theme. Explicit light and dark pass through;
// auto asks the detector, and a missing detector resolves to light.
func (t Theme) Resolve(d Detector) Theme {
	switch t {
	case Light, Dark:
		return t
	}
	if d == nil {
		return Light
	}
	if cur := d.Current(); cur == Dark {
		return Dark
	}
	return Light
}
