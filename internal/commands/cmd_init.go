package commands

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	initcmd "github.com/hay-kot/whatsnew/internal/commands/init"
)

type InitCmd struct {
	flags *Flags
	yes   bool
	force bool
	repos string
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Create a whatsnew configuration with an interactive form",
		UsageText: "whatsnew init [options]",
		Description: `Asks for the repositories to check and how the notification should look,
then writes the configuration file.

Use --yes to accept all defaults without prompts.
Use --force to overwrite existing configuration.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
			&cli.StringFlag{
				Name:        "repositories",
				Usage:       "comma-separated list of repository ids",
				Destination: &cmd.repos,
			},
		},
		Action: cmd.run,
	})
	return app
}

// RepositoryList returns the parsed --repositories value, or nil if not set.
func (cmd *InitCmd) RepositoryList() []string {
	if cmd.repos == "" {
		return nil
	}
	repos := strings.Split(cmd.repos, ",")
	for i, r := range repos {
		repos[i] = strings.TrimSpace(r)
	}
	return repos
}

func (cmd *InitCmd) run(ctx context.Context, _ *cli.Command) error {
	wizard := initcmd.NewWizard(initcmd.WizardOptions{
		ConfigPath:   cmd.flags.ConfigPath,
		DataDir:      cmd.flags.DataDir,
		Yes:          cmd.yes,
		Force:        cmd.force,
		Repositories: cmd.RepositoryList(),
	})
	return wizard.Run(ctx)
}
