// ABOUTME: Standard filesystem paths for keyview configuration and profile files
// ABOUTME: Resolves ~/.keyview/ for global and .keyview/ for project-local paths

package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	globalDirName  = ".keyview"
	projectDirName = ".keyview"
)

// GlobalDir returns the user-global config directory (~/.keyview/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.keyview/ in the project root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), "config.json")
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "config.json")
}

// ProfilesDir returns the directory scanned for profile files.
func ProfilesDir() string {
	return filepath.Join(GlobalDir(), "profiles")
}

// ResolvePath expands a leading ~/ and makes relative paths relative to base.
func ResolvePath(base, p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
