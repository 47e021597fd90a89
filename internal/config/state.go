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

const (
	// StateVersion is the current state file schema version.
	StateVersion = 1

	// MaxRecentProjects bounds State.RecentProjects.
	MaxRecentProjects = 8
)

// State represents mutable machine-local runtime state.
type State struct {
	Version int `toml:"version"`
	// ActiveProject is the project file selected with `carbon use`.
	ActiveProject string `toml:"active_project,omitempty"`
	// RecentProjects lists previously selected project files, newest first.
	RecentProjects []string `toml:"recent_projects,omitempty"`
}

// Activate makes path the active project and moves it to the front of the
// recent list.
func (s *State) Activate(path string) {
	path = strings.TrimSpace(path)
	s.ActiveProject = path
	s.RecentProjects = append([]string{path}, s.RecentProjects...)
	s.normalize()
}

// Forget drops path from the recent list and clears it if it is active.
func (s *State) Forget(path string) {
	if s.ActiveProject == path {
		s.ActiveProject = ""
	}
	kept := s.RecentProjects[:0]
	for _, p := range s.RecentProjects {
		if p != path {
			kept = append(kept, p)
		}
	}
	s.RecentProjects = kept
}

func (s *State) normalize() {
	if s.Version == 0 {
		s.Version = StateVersion
	}
	s.ActiveProject = strings.TrimSpace(s.ActiveProject)

	seen := make(map[string]bool, len(s.RecentProjects))
	recent := make([]string, 0, len(s.RecentProjects))
	for _, p := range s.RecentProjects {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		recent = append(recent, p)
	}
	if len(recent) > MaxRecentProjects {
		recent = recent[:MaxRecentProjects]
	}
	s.RecentProjects = recent
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// ResolveStatePath resolves the state.toml path with precedence:
//  1. explicitStatePath flag
//  2. cfg.StateFile from config.toml (relative to config file dir when not absolute)
//  3. sibling state.toml next to config.toml
func ResolveStatePath(explicitStatePath, configPath string, cfg *Config) string {
	if strings.TrimSpace(explicitStatePath) != "" {
		return explicitStatePath
	}

	configDir := filepath.Dir(ResolveConfigPath(configPath))
	if cfg != nil {
		if fromConfig := strings.TrimSpace(cfg.StateFile); fromConfig != "" {
			if isAbsolutePath(fromConfig) {
				return filepath.Clean(filepath.FromSlash(fromConfig))
			}
			return filepath.Join(configDir, filepath.FromSlash(fromConfig))
		}
	}

	return filepath.Join(configDir, "state.toml")
}

func isAbsolutePath(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}
	// Treat slash-rooted config values as absolute on every OS.
	return strings.HasPrefix(filepath.ToSlash(strings.TrimSpace(p)), "/")
}

// LoadState loads state.toml from a specific path.
// Returns a default state when the file does not exist.
func LoadState(path string) (*State, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state path is required")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &State{Version: StateVersion}, nil
	}

	var state State
	if _, err := toml.DecodeFile(path, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}

	state.normalize()
	return &state, nil
}

// SaveState writes state.toml atomically.
func SaveState(path string, state *State) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("state path is required")
	}
	if state == nil {
		state = &State{}
	}

	normalized := *state
	normalized.RecentProjects = append([]string(nil), state.RecentProjects...)
	normalized.normalize()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(normalized); err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write state %s: %w", path, err)
	}

	return nil
}
