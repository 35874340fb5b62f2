// Package config handles configuration loading and validation for whatsnew.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/whatsnew/internal/core/styles"
	"github.com/hay-kot/whatsnew/internal/core/theme"
	"github.com/hay-kot/whatsnew/internal/data/db"
	"github.com/hay-kot/whatsnew/internal/whatsnew/api"
)

// Widget defaults.
const (
	DefaultMaxWidth = 400
	DefaultZIndex   = 1000
)

// Config holds the application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Widget   WidgetConfig   `yaml:"widget"`
	Database DatabaseConfig `yaml:"database"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// APIConfig configures the remote changelog endpoint.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout bounds one request; zero disables it.
	Timeout    *Duration `yaml:"timeout,omitempty"`
	RatePerSec int       `yaml:"rate_per_sec"`
}

// WidgetConfig mirrors the public configuration surface of the notification.
type WidgetConfig struct {
	Repositories []string         `yaml:"repositories"`
	Position     styles.Position  `yaml:"position"`
	Theme        theme.Theme      `yaml:"theme"`
	MaxWidth     int              `yaml:"max_width"`
	ZIndex       *int             `yaml:"z_index,omitempty"`
	ShowAvatar   *bool            `yaml:"show_avatar,omitempty"`
	Styles       styles.Overrides `yaml:"styles,omitempty"`
}

// DatabaseConfig tunes the SQLite store.
type DatabaseConfig struct {
	BusyTimeout Duration `yaml:"busy_timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	timeout := Duration(api.DefaultTimeout)
	zIndex := DefaultZIndex
	showAvatar := true

	return Config{
		API: APIConfig{
			BaseURL:    api.DefaultBaseURL,
			Timeout:    &timeout,
			RatePerSec: api.DefaultRatePerSec,
		},
		Widget: WidgetConfig{
			Repositories: []string{},
			Position:     styles.DefaultPosition,
			Theme:        theme.Default,
			MaxWidth:     DefaultMaxWidth,
			ZIndex:       &zIndex,
			ShowAvatar:   &showAvatar,
			Styles:       styles.Overrides{},
		},
		Database: DatabaseConfig{
			BusyTimeout: Duration(5 * time.Second),
		},
	}
}

// Load reads configuration from the given path, applies defaults and
// validates the result. If configPath is empty or doesn't exist, returns
// defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg, err := Read(configPath, dataDir)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation, for callers that report problems
// themselves.
func Read(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == nil {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.RatePerSec == 0 {
		c.API.RatePerSec = defaults.API.RatePerSec
	}
	if c.Widget.Position == "" {
		c.Widget.Position = defaults.Widget.Position
	}
	if c.Widget.Theme == "" {
		c.Widget.Theme = defaults.Widget.Theme
	}
	if c.Widget.MaxWidth == 0 {
		c.Widget.MaxWidth = defaults.Widget.MaxWidth
	}
	if c.Widget.ZIndex == nil {
		c.Widget.ZIndex = defaults.Widget.ZIndex
	}
	if c.Widget.ShowAvatar == nil {
		c.Widget.ShowAvatar = defaults.Widget.ShowAvatar
	}
	if c.Widget.Styles == nil {
		c.Widget.Styles = styles.Overrides{}
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Timeout returns the API request timeout.
func (c *Config) Timeout() time.Duration {
	if c.API.Timeout == nil {
		return api.DefaultTimeout
	}
	return c.API.Timeout.Std()
}

// ZIndex returns the configured stacking order.
func (c *Config) ZIndex() int {
	if c.Widget.ZIndex == nil {
		return DefaultZIndex
	}
	return *c.Widget.ZIndex
}

// ShowAvatar reports whether avatar badges are drawn.
func (c *Config) ShowAvatar() bool {
	return c.Widget.ShowAvatar == nil || *c.Widget.ShowAvatar
}

// DatabasePath returns the path to the SQLite database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, db.FileName)
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
