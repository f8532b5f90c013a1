// ABOUTME: Named pattern sets: the built-in default, vt100 and kitty profiles plus user bindings.
// ABOUTME: Lookup resolves a profile name and suggests the closest built-in on a typo.

package pattern

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mauromedda/keyview/pkg/tui/fuzzy"
	"github.com/mauromedda/keyview/pkg/tui/input"
	"github.com/mauromedda/keyview/pkg/tui/key"
)

// ErrUnknownProfile is returned by Lookup for names with no built-in profile.
var ErrUnknownProfile = errors.New("unknown profile")

// Set is a named, ordered list of patterns. It implements input.Profile.
type Set struct {
	name     string
	patterns []input.Pattern
}

// New creates a profile from patterns, kept in the given order.
func New(name string, patterns ...input.Pattern) *Set {
	return &Set{name: name, patterns: patterns}
}

// Name implements input.Profile.
func (s *Set) Name() string { return s.name }

// Patterns implements input.Profile. The returned slice is a copy.
func (s *Set) Patterns() []input.Pattern {
	out := make([]input.Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Binding maps one literal input sequence to a key.
type Binding struct {
	Seq string
	Key key.Key
}

// FromBindings builds a profile of Basic patterns.
func FromBindings(name string, bindings []Binding) *Set {
	patterns := make([]input.Pattern, 0, len(bindings))
	for _, b := range bindings {
		patterns = append(patterns, Basic{Seq: b.Seq, Key: b.Key})
	}
	return New(name, patterns...)
}

// legacy returns a Basic pattern per entry of the key package's legacy
// table, sorted by sequence so registration order is stable.
func legacy() []input.Pattern {
	table := key.LegacySequences()
	seqs := make([]string, 0, len(table))
	for seq := range table {
		seqs = append(seqs, seq)
	}
	sort.Strings(seqs)

	patterns := make([]input.Pattern, 0, len(seqs))
	for _, seq := range seqs {
		patterns = append(patterns, Basic{Seq: seq, Key: table[seq]})
	}
	return patterns
}

// Default is the xterm profile. CursorReport comes last so it wins ties.
func Default() *Set {
	patterns := append(legacy(), Char{}, Control{}, AltChar{}, CSI{}, CursorReport{})
	return New("default", patterns...)
}

// VT100 is the default profile without xterm modifier sequences.
func VT100() *Set {
	patterns := append(legacy(), Char{}, Control{}, AltChar{}, CursorReport{})
	return New("vt100", patterns...)
}

// Kitty is the default profile plus kitty CSI u keys.
func Kitty() *Set {
	patterns := append(Default().Patterns(), KittyKey{})
	return New("kitty", patterns...)
}

type builtin struct {
	summary string
	build   func() *Set
}

var builtins = map[string]builtin{
	"default": {summary: "xterm keys, modified CSI keys, Alt combinations, cursor reports", build: Default},
	"vt100":   {summary: "unmodified VT100 keys, Alt combinations, cursor reports", build: VT100},
	"kitty":   {summary: "default plus kitty keyboard protocol CSI u keys", build: Kitty},
}

// Names returns the built-in profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary describes a built-in profile, or returns "" for unknown names.
func Summary(name string) string {
	return builtins[name].summary
}

// Lookup returns a fresh copy of the named built-in profile.
func Lookup(name string) (*Set, error) {
	if b, ok := builtins[name]; ok {
		return b.build(), nil
	}
	if s, ok := fuzzy.Suggest(name, Names()); ok {
		return nil, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownProfile, name, s)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownProfile, name)
}
