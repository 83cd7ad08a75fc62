package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour/styles"
	"github.com/hay-kot/criterio"
)

// Thresholds above which a setting is legal but probably a mistake.
const (
	longCancelDelay = 30 * time.Second
	longSettle      = 2 * time.Second
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration.
// Unlike Validate(), it reports every problem, including file access, as
// criterio.FieldErrors.
func (c *Config) ValidateDeep(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	errs = c.validateFileAccess(errs, configPath)

	if c.User == "" {
		errs = errs.Append("user", fmt.Errorf("cannot be empty"))
	}

	if c.Composer.CancelDelay < 0 {
		errs = errs.Append("composer.cancel_delay", fmt.Errorf("cannot be negative, got %s", c.Composer.CancelDelay))
	}
	if c.Composer.MinHeight < 1 {
		errs = errs.Append("composer.min_height", fmt.Errorf("must be at least 1, got %d", c.Composer.MinHeight))
	}
	if c.Composer.MaxHeight < c.Composer.MinHeight {
		errs = errs.Append("composer.max_height", fmt.Errorf("must be at least min_height (%d), got %d", c.Composer.MinHeight, c.Composer.MaxHeight))
	}

	if c.Scroll.Settle < 0 {
		errs = errs.Append("scroll.settle", fmt.Errorf("cannot be negative, got %s", c.Scroll.Settle))
	}
	if !isValidAnchor(c.Scroll.Anchor) {
		errs = errs.Append("scroll.anchor", fmt.Errorf("invalid anchor %q (use top, center or bottom)", c.Scroll.Anchor))
	}

	if !isValidDriver(c.Store.Driver) {
		errs = errs.Append("store.driver", fmt.Errorf("invalid driver %q (use %s or %s)", c.Store.Driver, DriverJSON, DriverSQLite))
	}

	if c.Render.Markdown {
		if _, ok := styles.DefaultStyles[c.Render.Style]; !ok {
			errs = errs.Append("render.style", fmt.Errorf("unknown glamour style %q", c.Render.Style))
		}
	}

	return errs.ToError()
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(errs criterio.FieldErrorsBuilder, configPath string) criterio.FieldErrorsBuilder {
	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil {
			if info.IsDir() {
				errs = errs.Append("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
			}
		} else if !os.IsNotExist(err) {
			errs = errs.Append("config_file", fmt.Errorf("cannot access %s: %w", configPath, err))
		}
	}

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
		return errs
	}

	if info, err := os.Stat(c.DataDir); err == nil {
		if !info.IsDir() {
			errs = errs.Append("data_dir", fmt.Errorf("%s exists but is not a directory", c.DataDir))
		}
	} else if !os.IsNotExist(err) {
		errs = errs.Append("data_dir", fmt.Errorf("cannot access %s: %w", c.DataDir, err))
	}

	return errs
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Composer.CancelDelay == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Composer",
			Item:     "cancel_delay",
			Message:  "cancel delay is zero; sent messages cannot be cancelled",
		})
	} else if c.Composer.CancelDelay > longCancelDelay {
		warnings = append(warnings, ValidationWarning{
			Category: "Composer",
			Item:     "cancel_delay",
			Message:  fmt.Sprintf("cancel delay of %s keeps messages pending for a long time", c.Composer.CancelDelay),
		})
	}

	if c.Scroll.Settle > longSettle {
		warnings = append(warnings, ValidationWarning{
			Category: "Scroll",
			Item:     "settle",
			Message:  fmt.Sprintf("settle window of %s makes the message list lag behind", c.Scroll.Settle),
		})
	}

	return warnings
}
