// ABOUTME: registry keeps a live decoder's profiles in sync with settings and profile files
// ABOUTME: Reloads drop the previous profiles' patterns, then register built-ins and files so files win ties

package main

import (
	"errors"
	"sync"

	"github.com/mauromedda/keyview/internal/config"
	"github.com/mauromedda/keyview/internal/log"
	"github.com/mauromedda/keyview/internal/viewer"
	"github.com/mauromedda/keyview/pkg/tui/input"
	"github.com/mauromedda/keyview/pkg/tui/input/pattern"
)

// defaultProfiles is used when neither flags nor settings name a profile.
var defaultProfiles = []string{"default"}

type registry struct {
	mu       sync.Mutex
	dec      *input.Decoder
	builtins []*pattern.Set
	files    []*pattern.Set
}

// lookupBuiltins resolves built-in profile names, reporting every unknown one.
func lookupBuiltins(names []string) ([]*pattern.Set, error) {
	if len(names) == 0 {
		names = defaultProfiles
	}
	var (
		sets []*pattern.Set
		errs []error
	)
	for _, name := range names {
		set, err := pattern.Lookup(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sets = append(sets, set)
	}
	return sets, errors.Join(errs...)
}

// loadProfileFiles parses every path. Files that fail are skipped and
// their errors joined.
func loadProfileFiles(paths []string) ([]*pattern.Set, error) {
	var (
		sets []*pattern.Set
		errs []error
	)
	for _, path := range paths {
		pf, err := config.LoadProfileFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set, err := pf.Profile()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sets = append(sets, set)
	}
	return sets, errors.Join(errs...)
}

func newRegistry(dec *input.Decoder) *registry {
	return &registry{dec: dec}
}

// apply replaces the registered profiles. Patterns added to the decoder by
// other means are left alone. Built-ins are registered before files, so a
// file binding beats a built-in pattern for the same input.
func (r *registry) apply(builtins, files []*pattern.Set) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []input.Pattern
	for _, old := range append(append([]*pattern.Set(nil), r.builtins...), r.files...) {
		stale = append(stale, old.Patterns()...)
	}
	add := make([]input.Profile, 0, len(builtins)+len(files))
	for _, b := range builtins {
		add = append(add, b)
	}
	for _, f := range files {
		add = append(add, f)
	}
	r.dec.ReplacePatterns(stale, add...)
	r.builtins, r.files = builtins, files
}

// names lists the active profiles in registration order.
func (r *registry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.builtins)+len(r.files))
	for _, s := range append(append([]*pattern.Set(nil), r.builtins...), r.files...) {
		out = append(out, s.Name())
	}
	return out
}

// reload re-reads settings and profile files and applies them. Problems
// are logged; whatever loaded cleanly is still applied. It returns the
// profile files to watch next, and false if nothing was applied.
func (r *registry) reload(a cliArgs, cwd string) ([]string, bool) {
	s, err := loadSettings(a, cwd)
	if err != nil {
		log.Warn("reload: %v", err)
		return nil, false
	}
	builtins, err := lookupBuiltins(s.Profiles)
	if err != nil {
		log.Warn("reload: %v", err)
		if len(builtins) == 0 {
			return nil, false
		}
	}
	paths, err := profilePaths(s)
	if err != nil {
		log.Warn("reload: %v", err)
	}
	files, err := loadProfileFiles(paths)
	if err != nil {
		log.Warn("reload: %v", err)
	}
	r.apply(builtins, files)
	log.Info("reload: %d built-in and %d file profiles active", len(builtins), len(files))
	return paths, true
}

// listing describes every built-in profile and each profile file.
func listing(paths []string) (builtins, files []viewer.ProfileInfo) {
	for _, name := range pattern.Names() {
		info := viewer.ProfileInfo{Name: name, Summary: pattern.Summary(name)}
		if set, err := pattern.Lookup(name); err == nil {
			info.Patterns = len(set.Patterns())
		}
		builtins = append(builtins, info)
	}
	for _, path := range paths {
		pf, err := config.LoadProfileFile(path)
		if err != nil {
			files = append(files, viewer.ProfileInfo{Name: path, Path: path, Notes: "Could not load: " + err.Error()})
			continue
		}
		info := viewer.ProfileInfo{Name: pf.Name, Path: pf.Path, Notes: pf.Notes, Patterns: len(pf.Bindings)}
		for _, b := range pf.Bindings {
			info.Bindings = append(info.Bindings, viewer.Binding{Seq: b.Seq, Key: b.Key})
		}
		files = append(files, info)
	}
	return builtins, files
}
