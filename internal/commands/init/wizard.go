package initcmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/whatsnew/internal/core/config"
	"github.com/hay-kot/whatsnew/internal/core/styles"
	"github.com/hay-kot/whatsnew/internal/core/theme"
	"github.com/hay-kot/whatsnew/internal/core/validate"
	"github.com/hay-kot/whatsnew/internal/printer"
)

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath   string
	DataDir      string
	Yes          bool     // skip prompts, use defaults
	Force        bool     // overwrite existing config
	Repositories []string // pre-specified repositories (nil = prompt)
}

// Answers are the values collected by the form.
type Answers struct {
	Repositories string
	Position     string
	Theme        string
	MaxWidth     string
	ShowAvatar   bool
}

// DefaultAnswers returns the form's starting values.
func DefaultAnswers(repos []string) Answers {
	d := config.DefaultConfig()
	return Answers{
		Repositories: strings.Join(repos, ", "),
		Position:     string(d.Widget.Position),
		Theme:        string(d.Widget.Theme),
		MaxWidth:     strconv.Itoa(d.Widget.MaxWidth),
		ShowAvatar:   true,
	}
}

// Config converts the answers to a validated configuration.
func (a Answers) Config(dataDir string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir

	cfg.Widget.Repositories = splitList(a.Repositories)

	pos, err := styles.ParsePosition(a.Position)
	if err != nil {
		return nil, err
	}
	cfg.Widget.Position = pos

	t, err := theme.Parse(a.Theme)
	if err != nil {
		return nil, err
	}
	cfg.Widget.Theme = t

	width, err := parseWidth(a.MaxWidth)
	if err != nil {
		return nil, err
	}
	cfg.Widget.MaxWidth = width

	showAvatar := a.ShowAvatar
	cfg.Widget.ShowAvatar = &showAvatar

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Wizard orchestrates the init process.
type Wizard struct {
	opts WizardOptions
}

// NewWizard creates a new init wizard.
func NewWizard(opts WizardOptions) *Wizard {
	return &Wizard{opts: opts}
}

// Run executes the wizard.
func (w *Wizard) Run(ctx context.Context) error {
	p := printer.Ctx(ctx)

	if ConfigExists(w.opts.ConfigPath) && !w.opts.Force {
		if w.opts.Yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", w.opts.ConfigPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(w.opts.ConfigPath + "\nOverwrite? (a backup will be created)").
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			p.Infof("Init cancelled")
			return nil
		}
	}

	answers := DefaultAnswers(w.opts.Repositories)
	if !w.opts.Yes {
		if err := w.prompt(&answers); err != nil {
			return err
		}
	}

	cfg, err := answers.Config(w.opts.DataDir)
	if err != nil {
		return fmt.Errorf("invalid answers: %w", err)
	}

	backup, err := BackupConfig(w.opts.ConfigPath)
	if err != nil {
		return err
	}
	if backup != "" {
		p.Infof("Backed up existing config to %s", backup)
	}

	if err := cfg.Save(w.opts.ConfigPath); err != nil {
		return err
	}
	p.Successf("Wrote %s", w.opts.ConfigPath)

	p.Printf("")
	p.Section("Next Steps")
	if len(cfg.Widget.Repositories) == 0 {
		p.Printf("  1. Add repositories under widget.repositories in %s", w.opts.ConfigPath)
		p.Printf("  2. Run 'whatsnew' to see what's new")
	} else {
		p.Printf("  1. Run 'whatsnew' to see what's new")
	}

	return nil
}

func (w *Wizard) prompt(a *Answers) error {
	positions := make([]huh.Option[string], 0, len(styles.Positions()))
	for _, pos := range styles.Positions() {
		positions = append(positions, huh.NewOption(string(pos), string(pos)))
	}
	themes := make([]huh.Option[string], 0, len(theme.All()))
	for _, t := range theme.All() {
		themes = append(themes, huh.NewOption(t.String(), t.String()))
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Repositories").
			Description("Comma-separated list of repository ids to check").
			Validate(func(s string) error {
				for _, r := range splitList(s) {
					if err := validate.RepositoryID(r); err != nil {
						return err
					}
				}
				return nil
			}).
			Value(&a.Repositories),
		huh.NewSelect[string]().
			Title("Position").
			Description("Corner of the terminal the notification appears in").
			Options(positions...).
			Value(&a.Position),
		huh.NewSelect[string]().
			Title("Theme").
			Options(themes...).
			Value(&a.Theme),
		huh.NewInput().
			Title("Maximum width").
			Description("Card width in terminal cells").
			Validate(func(s string) error {
				_, err := parseWidth(s)
				return err
			}).
			Value(&a.MaxWidth),
		huh.NewConfirm().
			Title("Show author badges?").
			Value(&a.ShowAvatar),
	))

	return form.Run()
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseWidth(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("width must be a positive number, got %q", s)
	}
	return n, nil
}
