package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/whatsnew/internal/core/validate"
	"github.com/hay-kot/whatsnew/internal/printer"
	"github.com/hay-kot/whatsnew/internal/whatsnew"
)

type DismissCmd struct {
	flags *Flags
	app   *whatsnew.App
}

// NewDismissCmd creates a new dismiss command
func NewDismissCmd(flags *Flags, app *whatsnew.App) *DismissCmd {
	return &DismissCmd{flags: flags, app: app}
}

// Register adds the dismiss command to the application
func (cmd *DismissCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "dismiss",
		Usage:       "Mark an update as dismissed",
		UsageText:   "whatsnew dismiss <repository> <update-id>",
		Description: "Records a dismissal for the update so notifications for it stay hidden.",
		Action:      cmd.run,
	})

	return app
}

func (cmd *DismissCmd) run(ctx context.Context, c *cli.Command) error {
	repo, updateID, err := pairArgs(c)
	if err != nil {
		return err
	}

	if err := cmd.app.Dismissals.Mark(ctx, repo, updateID); err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	p.Successf("Dismissed %s for %s", updateID, repo)
	if cmd.app.Ephemeral {
		p.Warnf("database unavailable; the dismissal only lasts for this run")
	}
	return nil
}

// pairArgs reads and validates <repository> <update-id>.
func pairArgs(c *cli.Command) (string, string, error) {
	if c.Args().Len() != 2 {
		return "", "", fmt.Errorf("expected <repository> <update-id>, got %d argument(s)", c.Args().Len())
	}
	repo, updateID := c.Args().Get(0), c.Args().Get(1)
	if err := validate.RepositoryID(repo); err != nil {
		return "", "", err
	}
	if err := validate.UpdateID(updateID); err != nil {
		return "", "", err
	}
	return repo, updateID, nil
}
