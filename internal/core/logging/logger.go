package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component derives a logger from the global one, tagged with the component
// name under "cmp". fields are key/value pairs added as string fields; a
// trailing key without a value is ignored.
func Component(name string, fields ...string) zerolog.Logger {
	lc := log.With().Str("cmp", name)
	for i := 0; i+1 < len(fields); i += 2 {
		lc = lc.Str(fields[i], fields[i+1])
	}
	return lc.Logger()
}
