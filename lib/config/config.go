// Copyright 2026 The Sidekick Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for sidekick.
type Config struct {
	// LogLevel sets the minimum level for the structured log on
	// stderr: debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`

	// SocketDir is the directory where editor instances listen on
	// their workspace sockets. Must be absolute.
	SocketDir string `yaml:"socket_dir"`

	// Editors configures which editor families sidekick talks to.
	Editors EditorsConfig `yaml:"editors"`
}

// EditorsConfig holds per-editor-family settings.
type EditorsConfig struct {
	Neovim NeovimConfig `yaml:"neovim"`
	VSCode VSCodeConfig `yaml:"vscode"`
}

// NeovimConfig configures the Neovim integration.
type NeovimConfig struct {
	// Enabled includes Neovim sockets in discovery and allows
	// "sidekick nvim" to launch instances.
	Enabled bool `yaml:"enabled"`

	// Binary is the nvim executable: either an absolute path or a
	// name resolved against PATH.
	Binary string `yaml:"binary"`
}

// VSCodeConfig configures the VS Code integration.
type VSCodeConfig struct {
	// Enabled includes VS Code extension sockets in discovery.
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration. Unlike most tools,
// these defaults are a fully working setup, not just zero-value
// placeholders: a hook invocation in a repository with no config file
// runs on them.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		SocketDir: "/tmp",
		Editors: EditorsConfig{
			Neovim: NeovimConfig{
				Enabled: true,
				Binary:  "nvim",
			},
			VSCode: VSCodeConfig{
				Enabled: true,
			},
		},
	}
}

// DefaultPath returns the conventional config file location:
// $XDG_CONFIG_HOME/sidekick/config.yaml, falling back to
// ~/.config/sidekick/config.yaml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "sidekick", "config.yaml")
}

// Load loads configuration from SIDEKICK_CONFIG if set, then from the
// default path if a file exists there, and otherwise returns the
// built-in defaults.
func Load() (*Config, error) {
	if path := os.Getenv("SIDEKICK_CONFIG"); path != "" {
		return LoadFile(path)
	}
	if path := DefaultPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return Default(), nil
}

// LoadFile loads configuration from a specific file path. File values
// are merged over the defaults, path variables are expanded, and the
// result is validated.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":   os.Getenv("HOME"),
		"TMPDIR": os.Getenv("TMPDIR"),
	}

	c.SocketDir = expandVars(c.SocketDir, vars)
	c.Editors.Neovim.Binary = expandVars(c.Editors.Neovim.Binary, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if c.SocketDir == "" {
		errs = append(errs, fmt.Errorf("socket_dir is required"))
	} else if !filepath.IsAbs(c.SocketDir) {
		errs = append(errs, fmt.Errorf("socket_dir must be absolute, got %q", c.SocketDir))
	}

	if c.Editors.Neovim.Enabled && c.Editors.Neovim.Binary == "" {
		errs = append(errs, fmt.Errorf("editors.neovim.binary is required when neovim is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Level returns the configured log level, defaulting to info when the
// level is unset or unparseable (Validate reports the latter).
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log_level %q (use debug, info, warn, or error)", s)
	}
}

// NeovimBinary resolves the configured nvim executable. Absolute paths
// are checked directly; bare names are resolved against PATH.
func (c *Config) NeovimBinary() (string, error) {
	binary := c.Editors.Neovim.Binary
	if filepath.IsAbs(binary) {
		if _, err := os.Stat(binary); err != nil {
			return "", fmt.Errorf("nvim binary %s: %w", binary, err)
		}
		return binary, nil
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("nvim binary %q not found in PATH: %w", binary, err)
	}
	return path, nil
}
