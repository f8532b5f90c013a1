// ABOUTME: Prefix matching of pending runes against the pattern registry.
// ABOUTME: Collects whether any pattern can still extend and the last complete decode in registry order.

package input

import "github.com/mauromedda/keyview/pkg/tui/key"

// matching is the outcome of testing one prefix against every pattern.
type matching struct {
	partial bool    // some pattern may still match a longer input
	full    key.Key // decode of the last pattern reporting a complete match
	hasFull bool
}

// match tests seq against the registry. Later patterns win ties on full.
func (d *Decoder) match(seq []rune) matching {
	var m matching
	for _, p := range d.patterns {
		if !p.Admits(seq) {
			continue
		}
		if p.Complete(seq) {
			m.full, m.hasFull = p.Decode(seq), true
		} else {
			m.partial = true
		}
	}
	return m
}
