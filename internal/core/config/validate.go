package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/whatsnew/internal/core/validate"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, required),
		criterio.Run("api.base_url", c.API.BaseURL, httpURL),
		c.validateAPI(),
		c.validateWidget(),
		criterio.Run("database.busy_timeout", c.Database.BusyTimeout, nonNegative),
	)
}

// ValidateDeep performs Validate plus checks that touch the filesystem. The
// configPath argument specifies the config file location to validate (empty
// string skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if len(c.Widget.Repositories) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Widget",
			Item:     "repositories",
			Message:  "no repositories configured; pass them as arguments to check or show",
		})
	}

	if c.Timeout() == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Item:     "timeout",
			Message:  "timeout is disabled; a hung request never resolves",
		})
	}

	seen := make(map[string]bool, len(c.Widget.Repositories))
	for _, repo := range c.Widget.Repositories {
		if seen[repo] {
			warnings = append(warnings, ValidationWarning{
				Category: "Widget",
				Item:     repo,
				Message:  "repository listed more than once",
			})
		}
		seen[repo] = true
	}

	return warnings
}

func (c *Config) validateAPI() error {
	var errs criterio.FieldErrorsBuilder
	if c.API.RatePerSec < 0 {
		errs = errs.Append("api.rate_per_sec", fmt.Errorf("must not be negative, got %d", c.API.RatePerSec))
	}
	if c.API.Timeout != nil && c.API.Timeout.Std() < 0 {
		errs = errs.Append("api.timeout", fmt.Errorf("must not be negative, got %s", c.API.Timeout))
	}
	return errs.ToError()
}

func (c *Config) validateWidget() error {
	var errs criterio.FieldErrorsBuilder

	for i, repo := range c.Widget.Repositories {
		if err := validate.RepositoryID(repo); err != nil {
			errs = errs.Append(fmt.Sprintf("widget.repositories[%d]", i), err)
		}
	}

	if !c.Widget.Position.IsValid() {
		errs = errs.Append("widget.position", fmt.Errorf("unknown position %q", c.Widget.Position))
	}
	if !c.Widget.Theme.IsValid() {
		errs = errs.Append("widget.theme", fmt.Errorf("unknown theme %q", c.Widget.Theme))
	}
	if c.Widget.MaxWidth < 0 {
		errs = errs.Append("widget.max_width", fmt.Errorf("must be positive, got %d", c.Widget.MaxWidth))
	}
	if err := c.Widget.Styles.Validate(); err != nil {
		errs = errs.Append("widget.styles", err)
	}

	return errs.ToError()
}

func required(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func httpURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func nonNegative(d Duration) error {
	if d < 0 {
		return fmt.Errorf("must not be negative, got %s", d)
	}
	return nil
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
