// ABOUTME: Keybindings manager with O(1) key-to-action lookup for the viewer's control keys
// ABOUTME: Merges user overrides onto the defaults, normalizes key specs, and detects conflicts

package keybindings

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/mauromedda/keyview/pkg/tui/key"
)

// Action is something the viewer does instead of only listing a key.
type Action string

const (
	ActionQuit        Action = "quit"
	ActionClear       Action = "clear"
	ActionQueryCursor Action = "query_cursor"
)

// actions is the display order.
var actions = []Action{ActionQuit, ActionClear, ActionQueryCursor}

// Defaults returns the built-in bindings.
func Defaults() map[Action][]string {
	return map[Action][]string{
		ActionQuit:        {"ctrl+c", "ctrl+d"},
		ActionClear:       {"ctrl+l"},
		ActionQueryCursor: {"ctrl+p"},
	}
}

// ConflictInfo describes a binding conflict where multiple actions share a key.
type ConflictInfo struct {
	Key     string
	Actions []Action
}

// Manager provides O(1) key-to-action lookup.
type Manager struct {
	bindings map[Action][]string
	lookup   map[string]Action // "ctrl+c" → ActionQuit
}

// New creates a Manager from the defaults with overrides applied per
// action. An empty list unbinds the action. Unknown actions and key specs
// are reported together.
func New(overrides map[string][]string) (*Manager, error) {
	bindings := Defaults()
	var errs []error
	for name, specs := range overrides {
		a := Action(name)
		if !slices.Contains(actions, a) {
			errs = append(errs, fmt.Errorf("keybindings: unknown action %q (want one of %s)", name, strings.Join(Names(), ", ")))
			continue
		}
		normalized := make([]string, 0, len(specs))
		for _, spec := range specs {
			k, err := key.ParseSpec(spec)
			if err != nil {
				errs = append(errs, fmt.Errorf("keybindings: %s: %w", name, err))
				continue
			}
			if k.Type == key.KeyRune && k.Ctrl {
				// Terminals send the same byte for ctrl+q and ctrl+Q.
				k.Rune = unicode.ToLower(k.Rune)
			}
			normalized = append(normalized, k.Spec())
		}
		bindings[a] = normalized
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	m := &Manager{bindings: bindings}
	m.buildLookup()
	return m, nil
}

// ActionFor returns the action bound to k, or "" if unbound.
func (m *Manager) ActionFor(k key.Key) Action {
	if k.Type == key.KeyEOF || k.Type == key.KeyUnknown || k.Type == key.KeyCursorLocation {
		return ""
	}
	return m.lookup[k.Spec()]
}

// Keys returns the specs bound to a.
func (m *Manager) Keys(a Action) []string {
	return slices.Clone(m.bindings[a])
}

// Conflicts detects keys bound to multiple actions, sorted by key.
func (m *Manager) Conflicts() []ConflictInfo {
	keyActions := make(map[string][]Action)
	for _, a := range actions {
		for _, k := range m.bindings[a] {
			keyActions[k] = append(keyActions[k], a)
		}
	}

	var conflicts []ConflictInfo
	for _, k := range slices.Sorted(maps.Keys(keyActions)) {
		if acts := keyActions[k]; len(acts) > 1 {
			conflicts = append(conflicts, ConflictInfo{Key: k, Actions: acts})
		}
	}
	return conflicts
}

// Help formats the first key of each bound action, e.g. "ctrl+c quit".
func (m *Manager) Help() string {
	var parts []string
	for _, a := range actions {
		if keys := m.bindings[a]; len(keys) > 0 {
			parts = append(parts, keys[0]+" "+strings.ReplaceAll(string(a), "_", " "))
		}
	}
	return strings.Join(parts, " · ")
}

// buildLookup maps every key to its action. On a conflict the action
// listed first wins.
func (m *Manager) buildLookup() {
	m.lookup = make(map[string]Action, len(m.bindings)*2)
	for i := len(actions) - 1; i >= 0; i-- {
		for _, k := range m.bindings[actions[i]] {
			m.lookup[k] = actions[i]
		}
	}
}

// Names returns the configurable action names, sorted.
func Names() []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	sort.Strings(names)
	return names
}
