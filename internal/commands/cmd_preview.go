package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/whatsnew/internal/core/theme"
	"github.com/hay-kot/whatsnew/internal/tui"
	"github.com/hay-kot/whatsnew/internal/whatsnew"
	"github.com/hay-kot/whatsnew/internal/whatsnew/api"
	"github.com/hay-kot/whatsnew/pkg/iojson"
)

type PreviewCmd struct {
	flags *Flags
	app   *whatsnew.App

	input iojson.FileReader[api.Response]
	theme string
}

// NewPreviewCmd creates a new preview command
func NewPreviewCmd(flags *Flags, app *whatsnew.App) *PreviewCmd {
	return &PreviewCmd{flags: flags, app: app}
}

// Register adds the preview command to the application
func (cmd *PreviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "preview",
		Usage:     "Render a card from a saved API response",
		UsageText: "whatsnew preview [-f response.json] [--theme light|dark]",
		Description: `Renders the latest update of an API response with the configured widget
styles. Nothing is fetched and no dismissal state is read or written, which
makes it useful for trying out styles overrides.`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.StringFlag{
				Name:        "theme",
				Usage:       "theme to render with (defaults to widget.theme)",
				Destination: &cmd.theme,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *PreviewCmd) run(ctx context.Context, c *cli.Command) error {
	resp, err := cmd.input.Read()
	if err != nil {
		return err
	}

	u := resp.Latest()
	if u == nil {
		return fmt.Errorf("response has no updates")
	}

	cfg := cmd.app.Config
	t := cfg.Widget.Theme
	if cmd.theme != "" {
		if t, err = theme.Parse(cmd.theme); err != nil {
			return err
		}
	}

	card := tui.Notification{
		RepositoryName: resp.RepositoryName(u),
		Update:         u,
		Position:       cfg.Widget.Position,
		Theme:          t.Resolve(cmd.app.Detector),
		MaxWidth:       cfg.Widget.MaxWidth,
		ZIndex:         cfg.ZIndex(),
		ShowAvatar:     cfg.ShowAvatar(),
		Styles:         cfg.Widget.Styles,
	}

	out := c.Root().Writer
	_, err = fmt.Fprintln(out, tui.RenderStatic([]tui.Notification{card}, writerWidth(out), time.Now()))
	return err
}
