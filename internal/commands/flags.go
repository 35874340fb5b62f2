package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hay-kot/whatsnew/internal/core/config"
	"github.com/hay-kot/whatsnew/internal/core/validate"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	Version    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "whatsnew", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "whatsnew")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/whatsnew/whatsnew.log
// On Linux: $XDG_STATE_HOME/whatsnew/whatsnew.log (defaults to ~/.local/state/whatsnew/whatsnew.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "whatsnew", "whatsnew.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "whatsnew", "whatsnew.log")
	}

	return filepath.Join(home, ".local", "state", "whatsnew", "whatsnew.log")
}

// UserAgent is sent with every API request.
func (f *Flags) UserAgent() string {
	v := f.Version
	if v == "" {
		v = "dev"
	}
	return "whatsnew/" + v
}

// Repositories returns the repositories named on the command line, or the
// configured ones when args is empty. Every id is validated.
func (f *Flags) Repositories(args []string) ([]string, error) {
	repos := args
	if len(repos) == 0 && f.Config != nil {
		repos = f.Config.Widget.Repositories
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("no repositories: pass one as an argument or set widget.repositories in %s", f.ConfigPath)
	}

	seen := make(map[string]bool, len(repos))
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		if err := validate.RepositoryID(r); err != nil {
			return nil, err
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out, nil
}
