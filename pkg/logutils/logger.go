// Package logutils builds the root zerolog logger for the CLI.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// MaxFileSize is the size past which an existing log file is rotated to
// "<file>.1" when the logger is created.
const MaxFileSize = 5 << 20

// New builds a leveled logger. With a file path it appends JSON lines to
// that file, rotating it first when it has grown past MaxFileSize. With an
// empty path it writes human-readable lines to stderr so logs never mix
// with command output on stdout.
//
// The level parameter can be one of: debug, info, warn, error, fatal.
func New(level string, file string) (zerolog.Logger, func(), error) {
	noop := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, noop, err
	}

	if file == "" {
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		return build(w, lvl), noop, nil
	}

	f, err := openLogFile(file)
	if err != nil {
		return zerolog.Logger{}, noop, err
	}
	return build(f, lvl), func() { _ = f.Close() }, nil
}

func build(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

func openLogFile(file string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	if info, err := os.Stat(file); err == nil && info.Size() > MaxFileSize {
		if err := os.Rename(file, file+".1"); err != nil {
			return nil, fmt.Errorf("rotate log file: %w", err)
		}
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
