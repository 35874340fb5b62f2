package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/whatsnew/internal/core/config"
	"github.com/hay-kot/whatsnew/internal/core/theme"
	"github.com/hay-kot/whatsnew/internal/printer"
	"github.com/hay-kot/whatsnew/internal/whatsnew"
	"github.com/hay-kot/whatsnew/internal/whatsnew/dismissal"
	"github.com/hay-kot/whatsnew/pkg/executil"
)

const demoBody = `{
  "updates": [{
    "id": "u1",
    "title": "Dark mode",
    "summary": "Now with **dark** mode.",
    "publishedAt": "2024-01-01T00:00:00Z",
    "url": "https://example.com/u1",
    "author": {"name": "Ada Lovelace"}
  }],
  "repository": {"name": "Demo App", "slug": "demo"}
}`

type harness struct {
	flags *Flags
	app   *whatsnew.App
	out   *bytes.Buffer
	ctx   context.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/demo") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(demoBody))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg, err := config.Load("", dir)
	require.NoError(t, err)
	cfg.API.BaseURL = srv.URL
	cfg.API.RatePerSec = 100
	cfg.Widget.Theme = theme.Light

	app, err := whatsnew.Open(context.Background(), cfg, whatsnew.Options{
		UserAgent: "whatsnew/test",
		Detector:  theme.Static(theme.Light),
		Executor:  &executil.RecordingExecutor{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	out := &bytes.Buffer{}
	return &harness{
		flags: &Flags{Config: cfg, DataDir: dir, ConfigPath: filepath.Join(dir, "config.yaml")},
		app:   app,
		out:   out,
		ctx:   printer.NewContext(context.Background(), printer.New(out, out)),
	}
}

// run executes args against a freshly registered command tree so flag state
// never leaks between runs.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := &cli.Command{
		Name:           "whatsnew",
		Writer:         h.out,
		ErrWriter:      h.out,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	check := NewCheckCmd(h.flags, h.app)
	root = check.Register(root)
	root = NewShowCmd(h.flags, h.app, check).Register(root)
	root = NewDismissCmd(h.flags, h.app).Register(root)
	root = NewDismissalsCmd(h.flags, h.app).Register(root)
	root = NewConfigValidateCmd(h.flags).Register(root)
	root = NewPreviewCmd(h.flags, h.app).Register(root)

	h.out.Reset()
	err := root.Run(h.ctx, append([]string{"whatsnew"}, args...))
	return ansi.Strip(h.out.String()), err
}

func TestCheck_JSON(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "check", "--json", "demo", "missing")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first checkResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "demo", first.Repository)
	assert.Equal(t, "Demo App", first.Name)
	assert.True(t, first.Visible)
	require.NotNil(t, first.Update)
	assert.Equal(t, "u1", first.Update.ID)

	var second checkResult
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.False(t, second.Visible)
	assert.Nil(t, second.Update)
}

func TestCheck_DismissHidesNextRun(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "check", "--dismiss", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Dark mode")
	assert.Contains(t, out, "Demo App")

	assert.True(t, h.app.Dismissals.IsDismissed(context.Background(), "demo", "u1"))

	out, err = h.run(t, "check", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "No new updates")
}

func TestCheck_UsesConfiguredRepositories(t *testing.T) {
	h := newHarness(t)
	h.flags.Config.Widget.Repositories = []string{"demo"}

	out, err := h.run(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Dark mode")
}

func TestCheck_NoRepositories(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "check")
	assert.ErrorContains(t, err, "no repositories")
}

func TestShow_NonTerminalPrints(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "show", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Dark mode")
}

func TestDismiss_AndList(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "dismiss", "demo", "release-1")
	require.NoError(t, err)
	_, err = h.run(t, "dismiss", "demo", "hotfix-2")
	require.NoError(t, err)

	out, err := h.run(t, "dismissals", "ls", "--json", "--match", "release-*", "demo")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)

	var info dismissalInfo
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &info))
	assert.Equal(t, "release-1", info.UpdateID)
	assert.Equal(t, dismissal.StorageKey("demo", "release-1"), info.Key)
	assert.True(t, info.Valid)
	assert.NotNil(t, info.DismissedAt)

	out, err = h.run(t, "dismissals", "ls", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "UPDATE")
	assert.Contains(t, out, "hotfix-2")
	assert.Contains(t, out, "just now")
}

func TestDismissals_ForgetAndPrune(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.app.Dismissals.MarkDismissed(ctx, "demo", "u1")
	require.NoError(t, h.app.KV.Set(ctx, dismissal.StorageKey("demo", "old"), dismissal.Record{Dismissed: true, Timestamp: 1, UpdateID: "old"}))

	out, err := h.run(t, "dismissals", "prune", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 1 dismissal(s)")

	_, err = h.run(t, "dismissals", "forget", "demo", "u1")
	require.NoError(t, err)
	assert.False(t, h.app.Dismissals.IsDismissed(ctx, "demo", "u1"))

	out, err = h.run(t, "dismissals", "ls", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "No dismissals for demo")
}

func TestDismiss_ArgumentErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "dismiss", "demo")
	assert.Error(t, err)

	_, err = h.run(t, "dismiss", "has space", "u1")
	assert.Error(t, err)

	_, err = h.run(t, "dismissals", "ls", "--match", "[", "demo")
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "resp.json")
	require.NoError(t, os.WriteFile(path, []byte(demoBody), 0o644))

	out, err := h.run(t, "preview", "-f", path, "--theme", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "Dark mode")
	assert.Contains(t, out, "Demo App")

	assert.False(t, h.app.Dismissals.IsDismissed(context.Background(), "demo", "u1"))
}

func TestConfigValidate(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "no repositories configured")

	h.flags.Config.Widget.MaxWidth = -5
	out, err = h.run(t, "config", "validate", "--format", "json")
	require.Error(t, err)

	var res validationResult
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &res))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "widget.max_width", res.Errors[0].Field)
}

func TestFieldErrors(t *testing.T) {
	assert.Nil(t, fieldErrors(nil))

	got := fieldErrors(errors.New("boom"))
	assert.Equal(t, []validationError{{Field: "config", Message: "boom"}}, got)

	got = fieldErrors(criterio.NewFieldErrors("api.base_url", errors.New("bad")))
	assert.Equal(t, []validationError{{Field: "api.base_url", Message: "bad"}}, got)
}

func TestFlags_Repositories(t *testing.T) {
	f := &Flags{Config: &config.Config{Widget: config.WidgetConfig{Repositories: []string{"a", "b"}}}}

	got, err := f.Repositories(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = f.Repositories([]string{"x", "x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)

	_, err = f.Repositories([]string{"bad id"})
	assert.Error(t, err)
}
