// Package config handles configuration loading and validation for parley.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	User     string         `yaml:"user"`
	Composer ComposerConfig `yaml:"composer"`
	Scroll   ScrollConfig   `yaml:"scroll"`
	Store    StoreConfig    `yaml:"store"`
	Render   RenderConfig   `yaml:"render"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// ComposerConfig controls the message composer.
type ComposerConfig struct {
	// CancelDelay is how long a sent message can still be cancelled.
	CancelDelay time.Duration `yaml:"cancel_delay"`
	// MinHeight and MaxHeight bound the editor height in rows.
	MinHeight int `yaml:"min_height"`
	MaxHeight int `yaml:"max_height"`
}

// ScrollConfig controls how the message list follows new content.
type ScrollConfig struct {
	Settle time.Duration `yaml:"settle"`
	Anchor string        `yaml:"anchor"` // top, center, bottom
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // json, sqlite
}

// RenderConfig controls message rendering.
type RenderConfig struct {
	Markdown bool   `yaml:"markdown"`
	Style    string `yaml:"style"` // glamour style name
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		User: defaultUser(),
		Composer: ComposerConfig{
			CancelDelay: 5 * time.Second,
			MinHeight:   1,
			MaxHeight:   6,
		},
		Scroll: ScrollConfig{
			Settle: 300 * time.Millisecond,
			Anchor: "bottom",
		},
		Store: StoreConfig{
			Driver: DriverJSON,
		},
		Render: RenderConfig{
			Markdown: true,
			Style:    "dark",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
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

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.User == "" {
		c.User = defaults.User
	}
	if c.Composer.MinHeight == 0 {
		c.Composer.MinHeight = defaults.Composer.MinHeight
	}
	if c.Composer.MaxHeight == 0 {
		c.Composer.MaxHeight = defaults.Composer.MaxHeight
	}
	if c.Scroll.Anchor == "" {
		c.Scroll.Anchor = defaults.Scroll.Anchor
	}
	if c.Store.Driver == "" {
		c.Store.Driver = defaults.Store.Driver
	}
	if c.Render.Style == "" {
		c.Render.Style = defaults.Render.Style
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.User == "" {
		return fmt.Errorf("user cannot be empty")
	}

	if c.Composer.CancelDelay < 0 {
		return fmt.Errorf("composer.cancel_delay cannot be negative")
	}

	if c.Composer.MinHeight < 1 {
		return fmt.Errorf("composer.min_height must be at least 1")
	}

	if c.Composer.MaxHeight < c.Composer.MinHeight {
		return fmt.Errorf("composer.max_height must be at least composer.min_height")
	}

	if c.Scroll.Settle < 0 {
		return fmt.Errorf("scroll.settle cannot be negative")
	}

	if !isValidAnchor(c.Scroll.Anchor) {
		return fmt.Errorf("scroll.anchor has invalid value %q", c.Scroll.Anchor)
	}

	if !isValidDriver(c.Store.Driver) {
		return fmt.Errorf("store.driver has invalid value %q", c.Store.Driver)
	}

	return nil
}

// RecordsPath returns the path of the record store for the configured driver.
func (c *Config) RecordsPath() string {
	if c.Store.Driver == DriverSQLite {
		return filepath.Join(c.DataDir, "records.db")
	}
	return filepath.Join(c.DataDir, "records.json")
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "anonymous"
}

func isValidAnchor(anchor string) bool {
	switch anchor {
	case "top", "center", "bottom":
		return true
	default:
		return false
	}
}

func isValidDriver(driver string) bool {
	switch driver {
	case DriverJSON, DriverSQLite:
		return true
	default:
		return false
	}
}
