// Package config handles global carbon configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the global carbon configuration.
type Config struct {
	// DefaultProject is the project file used when neither --project nor an
	// active project is set. Relative paths are resolved against ProjectDir.
	DefaultProject string `toml:"default_project"`

	// ProjectDir is the directory relative project paths are resolved against.
	ProjectDir string `toml:"project_dir"`

	// StateFile overrides the location of state.toml.
	StateFile string `toml:"state_file"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	Export ExportConfig `toml:"export"`
	Image  ImageConfig  `toml:"image"`
	Audit  AuditConfig  `toml:"audit"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// ExportConfig sets defaults for `carbon export` and `carbon watch`.
type ExportConfig struct {
	// Format is json, yaml or sqlite.
	Format string `toml:"format"`
	// OutDir is where exports are written when --out is not given.
	OutDir string `toml:"out_dir"`
}

// ImageConfig controls image field previews.
type ImageConfig struct {
	// MaxSize bounds the longest edge of a loaded image. Zero uses the default.
	MaxSize int `toml:"max_size"`
}

// AuditConfig controls the command audit log.
type AuditConfig struct {
	Enabled bool `toml:"enabled"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	// Example values: "monokai", "dracula", "github", "nord".
	CodeTheme string `toml:"code_theme"`
}

// ResolveProject picks the project file with precedence:
//  1. explicit (the --project flag)
//  2. the active project from state.toml
//  3. default_project from config.toml
//
// Relative paths from config are resolved against ProjectDir.
func (c *Config) ResolveProject(explicit string, state *State) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		return p, nil
	}
	if state != nil && state.ActiveProject != "" {
		return state.ActiveProject, nil
	}
	if c == nil || strings.TrimSpace(c.DefaultProject) == "" {
		return "", fmt.Errorf("no project selected: pass --project, run 'carbon use <path>' or set default_project")
	}

	p := filepath.FromSlash(strings.TrimSpace(c.DefaultProject))
	if !filepath.IsAbs(p) && c.ProjectDir != "" {
		p = filepath.Join(expandHome(c.ProjectDir), p)
	}
	return expandHome(p), nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// SlogLevel maps LogLevel to a slog level, defaulting to warn.
func (c *Config) SlogLevel() slog.Level {
	if c == nil {
		return slog.LevelWarn
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadOrDefault(DefaultPath())
}

// LoadOrDefault loads path, or returns an empty config if it doesn't exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/carbon/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if xdgPath, err := XDGPath(); err == nil {
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "carbon", "config.toml")
	}

	// Last resort fallback
	return filepath.Join(".", "config.toml")
}

// XDGPath returns the XDG-style config path (~/.config/carbon/config.toml).
func XDGPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "carbon", "config.toml"), nil
}

const defaultConfig = `# carbon configuration

# Project file used when no --project flag or active project is set
# default_project = "rpg/project.carbon"
# project_dir = "~/games"

# debug, info, warn or error
# log_level = "warn"

# [export]
# format = "json"
# out_dir = "export"

# Longest edge of image previews, in pixels
# [image]
# max_size = 256

# Append executed, undone and redone commands to .carbon/audit.log
# [audit]
# enabled = true

# Optional UI accent color for headers in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`

// CreateDefault creates a commented default config at path if it doesn't
// exist. An empty path uses DefaultPath.
func CreateDefault(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil // Already exists
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
