// ABOUTME: Settings resolution for keyview: config files, flag overrides, logging and profile paths
// ABOUTME: Flags win over the merged global and project settings

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mauromedda/keyview/internal/config"
	"github.com/mauromedda/keyview/internal/log"
	"github.com/mauromedda/keyview/pkg/tui/input"
)

// loadSettings reads the settings files and applies flag overrides.
func loadSettings(a cliArgs, cwd string) (*config.Settings, error) {
	var (
		s   *config.Settings
		err error
	)
	if a.configPath != "" {
		s, err = config.LoadFile(config.ResolvePath(cwd, a.configPath))
	} else {
		s, err = config.Load(cwd)
	}
	if err != nil {
		return nil, err
	}
	applyFlags(s, a, cwd)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

func applyFlags(s *config.Settings, a cliArgs, cwd string) {
	if len(a.profiles) > 0 {
		s.Profiles = a.profiles
	}
	for _, p := range a.profileFiles {
		s.ProfileFiles = append(s.ProfileFiles, config.ResolvePath(cwd, p))
	}
	if a.escapeTimeout >= 0 {
		ms := int(a.escapeTimeout / time.Millisecond)
		s.EscapeTimeoutMS = &ms
	}
	if a.discard != "" {
		s.DiscardPolicy = a.discard
	}
	if a.logLevel != "" {
		s.LogLevel = a.logLevel
	}
}

// configFiles lists the settings files whose changes trigger a reload.
func configFiles(a cliArgs, cwd string) []string {
	if a.configPath != "" {
		return []string{config.ResolvePath(cwd, a.configPath)}
	}
	return []string{config.GlobalConfigFile(), config.ProjectConfigFile(cwd)}
}

// profilePaths returns the configured profile files followed by those in
// the global profiles directory, without duplicates.
func profilePaths(s *config.Settings) ([]string, error) {
	found, err := config.ProfileFilesIn(config.ProfilesDir())
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range append(append([]string(nil), s.ProfileFiles...), found...) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

// decoderOptions maps settings onto decoder options.
func decoderOptions(s *config.Settings) ([]input.Option, error) {
	var opts []input.Option
	if d, ok := s.EscapeTimeout(); ok {
		opts = append(opts, input.WithEscapeTimeout(d))
	}
	policy, err := input.ParseDiscardPolicy(s.DiscardPolicy)
	if err != nil {
		return nil, err
	}
	return append(opts, input.WithDiscardPolicy(policy)), nil
}

// setupLogging applies the log level and output. While the viewer owns
// the screen, logs go to log_file or nowhere. The returned closer is nil
// unless a file was opened.
func setupLogging(s *config.Settings, interactive bool) (io.Closer, error) {
	lvl, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(lvl)

	if s.LogFile == "" {
		if interactive {
			log.SetOutput(nil)
		}
		return nil, nil
	}
	if err := config.EnsureDir(filepath.Dir(s.LogFile)); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}
