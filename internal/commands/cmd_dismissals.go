package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/whatsnew/internal/core/timefmt"
	"github.com/hay-kot/whatsnew/internal/core/validate"
	"github.com/hay-kot/whatsnew/internal/printer"
	"github.com/hay-kot/whatsnew/internal/whatsnew"
	"github.com/hay-kot/whatsnew/internal/whatsnew/dismissal"
	"github.com/hay-kot/whatsnew/pkg/iojson"
)

type DismissalsCmd struct {
	flags *Flags
	app   *whatsnew.App

	// flags
	match      string
	jsonOutput bool
}

// NewDismissalsCmd creates a new dismissals command
func NewDismissalsCmd(flags *Flags, app *whatsnew.App) *DismissalsCmd {
	return &DismissalsCmd{flags: flags, app: app}
}

// Register adds the dismissals command to the application
func (cmd *DismissalsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "dismissals",
		Usage: "Inspect and manage stored dismissals",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List a repository's dismissals",
				UsageText: "whatsnew dismissals ls [--match <glob>] [--json] <repository>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "match",
						Aliases:     []string{"m"},
						Usage:       "only list update ids matching a glob (e.g. 'release-*')",
						Destination: &cmd.match,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:        "prune",
				Usage:       "Evict expired and unreadable dismissals",
				UsageText:   "whatsnew dismissals prune <repository>",
				Description: "Removes dismissals older than 30 days and records that cannot be parsed.",
				Action:      cmd.runPrune,
			},
			{
				Name:      "forget",
				Usage:     "Delete one dismissal so the update shows again",
				UsageText: "whatsnew dismissals forget <repository> <update-id>",
				Action:    cmd.runForget,
			},
		},
	})

	return app
}

// dismissalInfo is the JSON output format for whatsnew dismissals ls --json.
type dismissalInfo struct {
	UpdateID    string     `json:"update_id"`
	Key         string     `json:"key"`
	Valid       bool       `json:"valid"`
	DismissedAt *time.Time `json:"dismissed_at,omitempty"`
}

func (cmd *DismissalsCmd) runList(ctx context.Context, c *cli.Command) error {
	repo, err := repositoryArg(c)
	if err != nil {
		return err
	}

	if cmd.match != "" && !doublestar.ValidatePattern(cmd.match) {
		return fmt.Errorf("invalid --match pattern %q", cmd.match)
	}

	entries, err := cmd.app.Dismissals.List(ctx, repo)
	if err != nil {
		return fmt.Errorf("list dismissals: %w", err)
	}
	entries = filterEntries(entries, cmd.match)

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, e := range entries {
			info := dismissalInfo{UpdateID: e.UpdateID, Key: e.Key, Valid: e.Valid}
			if e.Valid {
				at := e.Record.DismissedAt().UTC()
				info.DismissedAt = &at
			}
			if err := iojson.WriteLine(out, c.Root().ErrWriter, info); err != nil {
				return fmt.Errorf("encode dismissal: %w", err)
			}
		}
		return nil
	}

	if len(entries) == 0 {
		printer.Ctx(ctx).Infof("No dismissals for %s", repo)
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "UPDATE\tDISMISSED\tSTATUS")
	for _, e := range entries {
		when, status := "-", "invalid"
		if e.Valid {
			when = timefmt.Since(e.Record.DismissedAt(), now)
			status = "ok"
			if cmd.app.Dismissals.Age(e.Record) > dismissal.RetentionWindow {
				status = "expired"
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.UpdateID, when, status)
	}
	return w.Flush()
}

func filterEntries(entries []dismissal.Entry, pattern string) []dismissal.Entry {
	if pattern == "" {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		if ok, _ := doublestar.Match(pattern, e.UpdateID); ok {
			out = append(out, e)
		}
	}
	return out
}

func (cmd *DismissalsCmd) runPrune(ctx context.Context, c *cli.Command) error {
	repo, err := repositoryArg(c)
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)

	count, err := cmd.app.Dismissals.Prune(ctx, repo)
	if err != nil {
		return fmt.Errorf("prune dismissals: %w", err)
	}

	if count == 0 {
		p.Infof("No dismissals to prune")
		return nil
	}

	p.Successf("Pruned %d dismissal(s)", count)
	return nil
}

func (cmd *DismissalsCmd) runForget(ctx context.Context, c *cli.Command) error {
	repo, updateID, err := pairArgs(c)
	if err != nil {
		return err
	}

	if err := cmd.app.Dismissals.Forget(ctx, repo, updateID); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("Forgot dismissal of %s for %s", updateID, repo)
	return nil
}

func repositoryArg(c *cli.Command) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("expected <repository>, got %d argument(s)", c.Args().Len())
	}
	repo := c.Args().First()
	if err := validate.RepositoryID(repo); err != nil {
		return "", err
	}
	return repo, nil
}
