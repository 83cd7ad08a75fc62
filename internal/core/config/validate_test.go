package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.User = "alice"
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep("")
	assert.NoError(t, err, "expected valid config")
	assert.Empty(t, cfg.Warnings())
}

func TestValidateDeep_CollectsEveryError(t *testing.T) {
	cfg := validConfig(t)
	cfg.User = ""
	cfg.Composer.CancelDelay = -time.Second
	cfg.Composer.MinHeight = 4
	cfg.Composer.MaxHeight = 2
	cfg.Scroll.Anchor = "left"
	cfg.Store.Driver = "postgres"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	fields := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = fe.Field
	}
	assert.Equal(t, []string{
		"user",
		"composer.cancel_delay",
		"composer.max_height",
		"scroll.anchor",
		"store.driver",
	}, fields)
}

func TestValidateDeep_UnknownRenderStyle(t *testing.T) {
	cfg := validConfig(t)
	cfg.Render.Style = "neon"

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, cfg.ValidateDeep(""), &fieldErrs)
	assert.Equal(t, "render.style", fieldErrs[0].Field)

	cfg.Render.Markdown = false
	assert.NoError(t, cfg.ValidateDeep(""), "style is ignored without markdown")
}

func TestValidateDeep_FileAccess(t *testing.T) {
	t.Run("config path is a directory", func(t *testing.T) {
		cfg := validConfig(t)

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, cfg.ValidateDeep(t.TempDir()), &fieldErrs)
		assert.Equal(t, "config_file", fieldErrs[0].Field)
	})

	t.Run("missing config file is fine", func(t *testing.T) {
		cfg := validConfig(t)
		assert.NoError(t, cfg.ValidateDeep(filepath.Join(t.TempDir(), "missing.yaml")))
	})

	t.Run("data dir is a file", func(t *testing.T) {
		cfg := validConfig(t)
		file := filepath.Join(t.TempDir(), "data")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		cfg.DataDir = file

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, cfg.ValidateDeep(""), &fieldErrs)
		assert.Equal(t, "data_dir", fieldErrs[0].Field)
		assert.Contains(t, fieldErrs[0].Err.Error(), "not a directory")
	})
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		items  []string
	}{
		{name: "defaults", mutate: func(c *Config) {}, items: nil},
		{name: "zero cancel delay", mutate: func(c *Config) { c.Composer.CancelDelay = 0 }, items: []string{"cancel_delay"}},
		{name: "long cancel delay", mutate: func(c *Config) { c.Composer.CancelDelay = time.Minute }, items: []string{"cancel_delay"}},
		{name: "long settle", mutate: func(c *Config) { c.Scroll.Settle = 5 * time.Second }, items: []string{"settle"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			var items []string
			for _, w := range cfg.Warnings() {
				items = append(items, w.Item)
			}
			assert.Equal(t, tt.items, items)
		})
	}
}
