package executil

import (
	"context"
	"slices"
	"sync"
)

// RecordedCommand is one call made through a RecordingExecutor.
type RecordedCommand struct {
	Cmd  string
	Args []string
}

// RecordingExecutor is an Executor for tests. It runs nothing, remembers
// every call and answers with the canned Outputs and Errors for the command
// name (e.g. "xdg-open").
type RecordingExecutor struct {
	Outputs map[string][]byte
	Errors  map[string]error

	mu    sync.Mutex
	calls []RecordedCommand
}

var _ Executor = (*RecordingExecutor)(nil)

func (e *RecordingExecutor) Run(_ context.Context, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, RecordedCommand{Cmd: cmd, Args: slices.Clone(args)})
	return e.Outputs[cmd], e.Errors[cmd]
}

// Recorded returns the calls made so far, oldest first.
func (e *RecordingExecutor) Recorded() []RecordedCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.calls)
}

// Reset forgets every recorded call.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}
