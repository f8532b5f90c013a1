// ABOUTME: Settings loading with global + project config merge
// ABOUTME: JSON-based configuration for decoder timing, discard policy, profiles and logging

package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"
)

// Settings holds the merged configuration.
type Settings struct {
	// EscapeTimeoutMS overrides the decoder grace period; nil keeps the default.
	EscapeTimeoutMS *int     `json:"escape_timeout_ms,omitempty"`
	DiscardPolicy   string   `json:"discard_policy,omitempty"`
	Profiles        []string `json:"profiles,omitempty"`
	ProfileFiles    []string `json:"profile_files,omitempty"`
	LogLevel        string   `json:"log_level,omitempty"`
	LogFile         string   `json:"log_file,omitempty"`
	// Keybindings maps viewer actions to key specs, e.g. "quit": ["ctrl+q"].
	Keybindings map[string][]string `json:"keybindings,omitempty"`
}

// Load reads and merges global and project-local settings.
// Project settings override global settings.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)
	ResolveEnvVars(merged)
	return merged, nil
}

// LoadFile reads a single settings file, as given with -config.
func LoadFile(path string) (*Settings, error) {
	s, err := loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	ResolveEnvVars(s)
	return s, nil
}

// loadFile reads Settings from a JSON file. Returns zero Settings if the
// file does not exist. Profile file paths are env-expanded and resolved
// against the file's directory.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, p := range s.ProfileFiles {
		s.ProfileFiles[i] = ResolvePath(dir, expandEnv(p))
	}
	return &s, nil
}

// merge overlays project settings onto global settings. Scalars set in
// the project win; profile lists are appended so project profiles
// register last.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.EscapeTimeoutMS != nil {
		result.EscapeTimeoutMS = project.EscapeTimeoutMS
	}
	if project.DiscardPolicy != "" {
		result.DiscardPolicy = project.DiscardPolicy
	}
	if project.LogLevel != "" {
		result.LogLevel = project.LogLevel
	}
	if project.LogFile != "" {
		result.LogFile = project.LogFile
	}
	if len(project.Keybindings) > 0 {
		result.Keybindings = make(map[string][]string, len(global.Keybindings)+len(project.Keybindings))
		maps.Copy(result.Keybindings, global.Keybindings)
		maps.Copy(result.Keybindings, project.Keybindings)
	}
	result.Profiles = appendUnique(global.Profiles, project.Profiles)
	result.ProfileFiles = appendUnique(global.ProfileFiles, project.ProfileFiles)

	return &result
}

func appendUnique(base, extra []string) []string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

// EscapeTimeout returns the configured grace period and whether one is set.
func (s *Settings) EscapeTimeout() (time.Duration, bool) {
	if s == nil || s.EscapeTimeoutMS == nil {
		return 0, false
	}
	return time.Duration(*s.EscapeTimeoutMS) * time.Millisecond, true
}

// Validate checks values that the decoder would otherwise reject late.
func (s *Settings) Validate() error {
	if s.EscapeTimeoutMS != nil && *s.EscapeTimeoutMS < 0 {
		return fmt.Errorf("escape_timeout_ms must not be negative, got %d", *s.EscapeTimeoutMS)
	}
	switch s.DiscardPolicy {
	case "", "prefix", "first":
	default:
		return fmt.Errorf("discard_policy must be \"prefix\" or \"first\", got %q", s.DiscardPolicy)
	}
	return nil
}
