// ABOUTME: Pattern and Profile contracts consumed by the Decoder, plus pattern equality for dedup.
// ABOUTME: A Pattern judges rune prefixes as admissible, complete, and decodes complete ones into a key.Key.

package input

import (
	"reflect"

	"github.com/mauromedda/keyview/pkg/tui/key"
)

// Pattern recognizes one input form (a single character class, an escape
// sequence family, a cursor report...).
type Pattern interface {
	// Admits reports whether seq is a prefix of, or equal to, some input
	// this pattern recognizes.
	Admits(seq []rune) bool
	// Complete reports whether seq is by itself a full match. It is only
	// consulted when Admits(seq) is true.
	Complete(seq []rune) bool
	// Decode returns the event for a complete match.
	Decode(seq []rune) key.Key
}

// Equaler lets a Pattern define its own equality for registry dedup.
type Equaler interface {
	Equal(other Pattern) bool
}

// Profile is a named bundle of patterns registered as a unit.
type Profile interface {
	Name() string
	Patterns() []Pattern
}

// SamePattern reports whether a and b are equal for registry purposes.
// Patterns implementing Equaler decide for themselves; otherwise values of
// the same comparable dynamic type are compared with ==.
func SamePattern(a, b Pattern) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
