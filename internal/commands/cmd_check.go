package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/whatsnew/internal/printer"
	"github.com/hay-kot/whatsnew/internal/tui"
	"github.com/hay-kot/whatsnew/internal/whatsnew"
	"github.com/hay-kot/whatsnew/internal/whatsnew/api"
	"github.com/hay-kot/whatsnew/pkg/iojson"
)

type CheckCmd struct {
	flags *Flags
	app   *whatsnew.App

	// flags
	jsonOutput bool
	dismiss    bool
}

// NewCheckCmd creates a new check command
func NewCheckCmd(flags *Flags, app *whatsnew.App) *CheckCmd {
	return &CheckCmd{flags: flags, app: app}
}

// Register adds the check command to the application
func (cmd *CheckCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "check",
		Usage:     "Check repositories for an undismissed update and print it",
		UsageText: "whatsnew check [--json] [--dismiss] [repository...]",
		Description: `Runs one check cycle per repository and prints the card of every update
that has not been dismissed yet. Repositories default to widget.repositories.

Use --json for one JSON object per repository. Use --dismiss to mark every
printed update as dismissed so it is not shown again.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "dismiss",
				Usage:       "mark printed updates as dismissed",
				Destination: &cmd.dismiss,
			},
		},
		Action: cmd.run,
	})

	return app
}

// checkResult is the JSON output format for whatsnew check --json.
type checkResult struct {
	Repository string      `json:"repository"`
	Name       string      `json:"name"`
	Visible    bool        `json:"visible"`
	Update     *api.Update `json:"update,omitempty"`
}

func (cmd *CheckCmd) run(ctx context.Context, c *cli.Command) error {
	repos, err := cmd.flags.Repositories(c.Args().Slice())
	if err != nil {
		return err
	}

	cfg := cmd.app.Config
	sessions := cmd.app.Checker.CheckAll(ctx, repos)
	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, s := range sessions {
			res := checkResult{
				Repository: s.RepositoryID(),
				Name:       s.RepositoryName(),
				Visible:    s.Visible(),
			}
			if res.Visible {
				res.Update = s.Update()
			}
			if err := iojson.WriteLine(out, c.Root().ErrWriter, res); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
		}
	} else {
		t := cfg.Widget.Theme.Resolve(cmd.app.Detector)
		cards := make([]tui.Notification, 0, len(sessions))
		for i, s := range sessions {
			if s.Visible() {
				cards = append(cards, notificationFor(ctx, cfg, s, t, i))
			}
		}

		if len(cards) == 0 {
			printer.Ctx(ctx).Infof("No new updates")
		} else {
			_, _ = fmt.Fprintln(out, tui.RenderStatic(cards, writerWidth(out), time.Now()))
		}
	}

	if cmd.dismiss {
		for _, s := range sessions {
			s.Dismiss(ctx)
		}
	}

	return nil
}
