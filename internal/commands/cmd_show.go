package commands

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/whatsnew/internal/tui"
	"github.com/hay-kot/whatsnew/internal/whatsnew"
)

type ShowCmd struct {
	flags *Flags
	app   *whatsnew.App
	check *CheckCmd
}

// NewShowCmd creates a new show command. check handles non-interactive
// output.
func NewShowCmd(flags *Flags, app *whatsnew.App, check *CheckCmd) *ShowCmd {
	return &ShowCmd{flags: flags, app: app, check: check}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show undismissed updates as an interactive notification",
		UsageText: "whatsnew show [repository...]",
		Description: `Checks every repository and shows a notification card in the configured
corner of the terminal for each update that has not been dismissed.

Press d to dismiss, o to open the update and dismiss it, tab to move
between cards and q to quit without dismissing. When output is not a
terminal the cards are printed like 'whatsnew check'.`,
		Action: cmd.run,
	})

	return app
}

// Run executes show. Exported for use as default command.
func (cmd *ShowCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	if !isTerminal(c.Root().Writer) {
		return cmd.check.run(ctx, c)
	}

	repos, err := cmd.flags.Repositories(c.Args().Slice())
	if err != nil {
		return err
	}

	cfg := cmd.app.Config
	checks := make([]tui.CheckFunc, 0, len(repos))
	for i, repo := range repos {
		checks = append(checks, func(checkCtx context.Context) (tui.Notification, bool) {
			s := cmd.app.Checker.Check(checkCtx, repo)
			if !s.Visible() {
				return tui.Notification{}, false
			}
			// The model applies the live theme when the card arrives.
			return notificationFor(ctx, cfg, s, "", i), true
		})
	}

	m := tui.New(ctx, tui.Options{
		Checks:   checks,
		Position: cfg.Widget.Position,
		Theme:    cfg.Widget.Theme,
		Detector: cmd.app.Detector,
		Opener:   cmd.app.Opener,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(c.Root().Writer))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			log.Debug().Err(err).Msg("notification closed by cancellation")
			return nil
		}
		return fmt.Errorf("run notification: %w", err)
	}

	return nil
}
