package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/parley/internal/core/config"
)

// ConfigCheck validates the loaded configuration and reports the settings
// that shape sending.
type ConfigCheck struct {
	config     *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{config: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.add("Config loaded", StatusFail, "configuration not loaded")
		return result
	}

	if _, err := os.Stat(c.configPath); errors.Is(err, os.ErrNotExist) {
		result.add("Config file", StatusPass, "not found, using defaults")
	} else {
		result.add("Config file", StatusPass, c.configPath)
	}

	if err := c.config.ValidateDeep(c.configPath); err != nil {
		var fieldErrs criterio.FieldErrors
		if !errors.As(err, &fieldErrs) {
			fieldErrs = criterio.FieldErrors{{Err: err}}
		}
		for _, fe := range fieldErrs {
			label := fe.Field
			if label == "" {
				label = "validation"
			}
			result.add(label, StatusFail, fe.Err.Error())
		}
		return result
	}

	result.add("User", StatusPass, c.config.User)
	result.add("Cancel window", StatusPass, fmt.Sprintf("%s, editor %d-%d rows",
		c.config.Composer.CancelDelay, c.config.Composer.MinHeight, c.config.Composer.MaxHeight))

	for _, w := range c.config.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " (" + w.Item + ")"
		}
		result.add(label, StatusWarn, w.Message)
	}

	return result
}
