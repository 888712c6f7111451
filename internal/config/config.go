package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/NeverVane/histpick/internal/apperrors"
	"github.com/NeverVane/histpick/internal/logger"
	"github.com/NeverVane/histpick/pkg/history"
)

// Required environment variables
const (
	EnvHome    = "HOME"
	EnvShell   = "SHELL"
	EnvNoColor = "NO_COLOR"
)

// Config represents the complete configuration for a histpick run.
// It is assembled from the environment and command line flags only.
type Config struct {
	// User home directory, history paths are resolved under it
	Home string `toml:"home"`

	// Login shell path as found in $SHELL
	Shell string `toml:"shell"`

	// Explicit history file; bypasses shell based resolution when set
	HistoryFile string `toml:"history_file"`

	// TUI configuration
	TUI TUIConfig `toml:"tui"`

	// Logging configuration
	Log logger.Config `toml:"log"`
}

// TUIConfig contains picker interface settings
type TUIConfig struct {
	// Disable colors in the picker and reports
	NoColor bool `toml:"no_color"`

	// Query the picker starts with
	InitialQuery string `toml:"initial_query"`

	// Copy the chosen command to the system clipboard
	CopyToClipboard bool `toml:"copy_to_clipboard"`

	// File the chosen command is written to, for shell widgets
	OutputFile string `toml:"output_file"`
}

// LookupFunc matches the signature of os.LookupEnv
type LookupFunc func(key string) (string, bool)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: *logger.DefaultConfig(),
	}
}

// FromEnv builds a configuration from the process environment
func FromEnv(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := DefaultConfig()

	home, err := requireEnv(lookup, EnvHome)
	if err != nil {
		return nil, err
	}
	cfg.Home = home

	// SHELL only matters when no explicit history file is given, so a
	// missing value is reported by Validate instead of here.
	cfg.Shell, _ = lookup(EnvShell)

	if _, ok := lookup(EnvNoColor); ok {
		cfg.TUI.NoColor = true
	}

	return cfg, nil
}

func requireEnv(lookup LookupFunc, key string) (string, error) {
	value, ok := lookup(key)
	if !ok || value == "" {
		return "", apperrors.Configf("read environment", "could not determine %s: environment variable is not set", key)
	}
	return value, nil
}

// ApplyDefaults fills in values left empty
func (c *Config) ApplyDefaults() {
	defaults := logger.DefaultConfig()
	if c.Log.Level == "" {
		c.Log.Level = defaults.Level
	}
	if c.Log.Output == "" {
		c.Log.Output = defaults.Output
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Home == "" {
		return apperrors.Configf("validate config", "%s is required", EnvHome)
	}

	if c.HistoryFile == "" {
		if c.Shell == "" {
			return apperrors.Configf("validate config", "could not determine %s: environment variable is not set", EnvShell)
		}
		if _, err := history.ParseShell(c.Shell); err != nil {
			return apperrors.Config("validate config", "unsupported shell", err)
		}
	} else if !filepath.IsAbs(c.HistoryFile) {
		return apperrors.Configf("validate config", "history file must be an absolute path, got: %s", c.HistoryFile)
	}

	if c.TUI.OutputFile != "" && !filepath.IsAbs(c.TUI.OutputFile) {
		return apperrors.Configf("validate config", "output file must be an absolute path, got: %s", c.TUI.OutputFile)
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	if !validLevels[c.Log.Level] {
		return apperrors.Configf("validate config", "log level must be one of: trace, debug, info, warn, error, disabled")
	}

	return nil
}

// HistoryPath returns the history file this configuration points at
func (c *Config) HistoryPath() (string, error) {
	if c.HistoryFile != "" {
		return c.HistoryFile, nil
	}

	shell, err := history.ParseShell(c.Shell)
	if err != nil {
		return "", apperrors.Config("resolve history file", "unsupported shell", err)
	}
	return shell.HistoryPath(c.Home), nil
}

// EncodeTOML renders the effective configuration as TOML
func (c *Config) EncodeTOML() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", fmt.Errorf("failed to encode config as TOML: %w", err)
	}
	return buf.String(), nil
}
