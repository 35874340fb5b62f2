package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/whatsnew/internal/commands"
	"github.com/hay-kot/whatsnew/internal/core/config"
	"github.com/hay-kot/whatsnew/internal/core/logging"
	"github.com/hay-kot/whatsnew/internal/core/theme"
	"github.com/hay-kot/whatsnew/internal/whatsnew"
	"github.com/hay-kot/whatsnew/pkg/executil"
	"github.com/hay-kot/whatsnew/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// configCommands can run with a config file that does not validate.
var configCommands = map[string]bool{"config": true, "init": true}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		app       = &whatsnew.App{}
	)

	flags := &commands.Flags{Version: version}

	root := &cli.Command{
		Name:      "whatsnew",
		Usage:     "Show what's new in the projects you use",
		UsageText: "whatsnew [global options] command [command options]",
		Description: `whatsnew checks a changelog endpoint for the latest update of each
configured repository and shows it once as a notification card. Dismissed
updates are remembered for 30 days.

Run 'whatsnew' with no arguments to show the notification.
Run 'whatsnew init' to create a configuration file.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("WHATSNEW_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file, or - for stderr (defaults to the user state directory)",
				Sources:     cli.EnvVars("WHATSNEW_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("WHATSNEW_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("WHATSNEW_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logFile := flags.LogFile
			switch logFile {
			case "":
				logFile = commands.DefaultLogFile()
			case "-":
				logFile = ""
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Read(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			if configCommands[c.Args().First()] {
				return ctx, nil
			}

			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid config: %w", err)
			}
			for _, w := range cfg.Warnings() {
				log.Debug().Str("category", w.Category).Str("item", w.Item).Msg(w.Message)
			}

			opened, err := whatsnew.Open(ctx, cfg, whatsnew.Options{
				UserAgent: flags.UserAgent(),
				Detector:  theme.NewHostDetector(os.Stdout),
				Executor:  &executil.RealExecutor{},
			})
			if err != nil {
				return ctx, err
			}

			// Commands already hold a pointer to app.
			*app = *opened

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if err := app.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				return err
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	checkCmd := commands.NewCheckCmd(flags, app)
	showCmd := commands.NewShowCmd(flags, app, checkCmd)

	root = checkCmd.Register(root)
	root = showCmd.Register(root)
	root = commands.NewDismissCmd(flags, app).Register(root)
	root = commands.NewDismissalsCmd(flags, app).Register(root)
	root = commands.NewPreviewCmd(flags, app).Register(root)
	root = commands.NewConfigValidateCmd(flags).Register(root)
	root = commands.NewInitCmd(flags).Register(root)

	// Show is the default action when no subcommand is provided
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'whatsnew --help' for usage", c.Args().First())
		}
		return showCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
