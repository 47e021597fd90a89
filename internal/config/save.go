package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/glint-tools/carbon/internal/atomicfile"
)

type persistedConfig struct {
	DefaultProject *string              `toml:"default_project,omitempty"`
	ProjectDir     *string              `toml:"project_dir,omitempty"`
	StateFile      *string              `toml:"state_file,omitempty"`
	LogLevel       *string              `toml:"log_level,omitempty"`
	Export         *persistedExport     `toml:"export,omitempty"`
	Image          *ImageConfig         `toml:"image,omitempty"`
	Audit          *AuditConfig         `toml:"audit,omitempty"`
	UI             *persistedUISettings `toml:"ui,omitempty"`
}

type persistedExport struct {
	Format *string `toml:"format,omitempty"`
	OutDir *string `toml:"out_dir,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically. Empty
// settings are left out.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		DefaultProject: nonEmptyPtr(cfg.DefaultProject),
		ProjectDir:     nonEmptyPtr(cfg.ProjectDir),
		StateFile:      nonEmptyPtr(cfg.StateFile),
		LogLevel:       nonEmptyPtr(cfg.LogLevel),
	}

	format := nonEmptyPtr(cfg.Export.Format)
	outDir := nonEmptyPtr(cfg.Export.OutDir)
	if format != nil || outDir != nil {
		out.Export = &persistedExport{Format: format, OutDir: outDir}
	}
	if cfg.Image.MaxSize > 0 {
		out.Image = &ImageConfig{MaxSize: cfg.Image.MaxSize}
	}
	if cfg.Audit.Enabled {
		out.Audit = &AuditConfig{Enabled: true}
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
