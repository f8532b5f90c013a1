// ABOUTME: Loader for user profile files mapping literal input sequences to key specs
// ABOUTME: Accepts plain YAML or Markdown with YAML frontmatter, whose body documents the profile

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mauromedda/keyview/pkg/tui/input/pattern"
	"github.com/mauromedda/keyview/pkg/tui/key"
)

// BindingEntry is one seq -> key line of a profile file. Seq uses YAML
// double-quoted escapes, e.g. "\e[25~".
type BindingEntry struct {
	Seq string `yaml:"seq"`
	Key string `yaml:"key"`
}

// ProfileFile is the on-disk form of a user profile.
type ProfileFile struct {
	Name     string         `yaml:"name"`
	Bindings []BindingEntry `yaml:"bindings"`

	// Path is the file the profile was read from.
	Path string `yaml:"-"`
	// Notes is the Markdown body of a .md profile file.
	Notes string `yaml:"-"`
}

// LoadProfileFile reads a .yaml/.yml file or a .md file with frontmatter.
// A missing name defaults to the file name without extension.
func LoadProfileFile(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var pf ProfileFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		fm, body, err := ParseFrontmatter[ProfileFile](string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing profile file %s: %w", path, err)
		}
		pf, pf.Notes = fm, strings.TrimSpace(body)
	default:
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parsing profile file %s: %w", path, err)
		}
	}

	pf.Path = path
	if pf.Name == "" {
		pf.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &pf, nil
}

// Profile converts the file into a decoder profile. Every entry is
// checked; the returned error joins all problems found.
func (pf *ProfileFile) Profile() (*pattern.Set, error) {
	bindings := make([]pattern.Binding, 0, len(pf.Bindings))
	var errs []error
	for i, b := range pf.Bindings {
		if b.Seq == "" {
			errs = append(errs, fmt.Errorf("%s: binding %d: empty seq", pf.Name, i+1))
			continue
		}
		k, err := key.ParseSpec(b.Key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: binding %d: %w", pf.Name, i+1, err))
			continue
		}
		bindings = append(bindings, pattern.Binding{Seq: b.Seq, Key: k})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return pattern.FromBindings(pf.Name, bindings), nil
}

// ProfileFilesIn lists profile files in dir, sorted. A missing directory
// yields no files.
func ProfileFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".md", ".markdown":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
