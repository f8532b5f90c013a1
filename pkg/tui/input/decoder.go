// ABOUTME: Decoder turns a rune Source into key.Key events by longest-prefix matching against registered patterns.
// ABOUTME: Resolves shared prefixes (ESC vs ESC [ A) with a bounded escape timeout and recovers from garbage input.

package input

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mauromedda/keyview/internal/log"
	"github.com/mauromedda/keyview/pkg/tui/key"
)

// DefaultEscapeTimeout is how long Next waits for a longer match once a
// shorter complete match is already in hand.
const DefaultEscapeTimeout = 250 * time.Millisecond

// ctrlF3Report is the cursor report that xterm-style terminals also send for
// Ctrl+F3 (ESC [ 1 ; 5 R).
var ctrlF3Report = key.Position{Row: 1, Col: 5}

// DiscardPolicy selects how much unmatchable input is dropped when no
// pattern accepts the pending prefix and there is no fallback match.
type DiscardPolicy int

const (
	// DiscardPrefix drops the whole examined prefix.
	DiscardPrefix DiscardPolicy = iota
	// DiscardFirstRune drops only the leading rune and rescans the rest.
	DiscardFirstRune
)

// String returns the config name of the policy.
func (p DiscardPolicy) String() string {
	if p == DiscardFirstRune {
		return "first"
	}
	return "prefix"
}

// ParseDiscardPolicy maps "prefix" or "first" to a policy.
func ParseDiscardPolicy(s string) (DiscardPolicy, error) {
	switch s {
	case "", "prefix":
		return DiscardPrefix, nil
	case "first":
		return DiscardFirstRune, nil
	}
	return DiscardPrefix, fmt.Errorf("unknown discard policy %q", s)
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithEscapeTimeout overrides DefaultEscapeTimeout. Zero disables the wait.
func WithEscapeTimeout(d time.Duration) Option {
	return func(dec *Decoder) {
		if d >= 0 {
			dec.escapeTimeout = d
		}
	}
}

// WithDiscardPolicy sets the discard granularity for unmatchable input.
func WithDiscardPolicy(p DiscardPolicy) Option {
	return func(dec *Decoder) {
		dec.discard = p
	}
}

// WithProfiles registers profiles at construction time.
func WithProfiles(profiles ...Profile) Option {
	return func(dec *Decoder) {
		for _, p := range profiles {
			dec.addProfileLocked(p)
		}
	}
}

// Decoder reads runes from a Source and resolves them into key events.
// All methods are safe for concurrent use; they serialize on one mutex,
// including the escape-timeout wait inside Next.
type Decoder struct {
	mu sync.Mutex

	src      Source
	patterns []Pattern
	buf      []rune

	lastPos key.Position
	hasPos  bool
	seenEOF bool

	escapeTimeout time.Duration
	discard       DiscardPolicy
}

// NewDecoder creates a Decoder reading from src.
func NewDecoder(src Source, opts ...Option) *Decoder {
	d := &Decoder{
		src:           src,
		buf:           make([]rune, 0, 32),
		escapeTimeout: DefaultEscapeTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddProfile registers every pattern of p. A pattern equal to one already
// registered replaces it and moves to the end of the registry.
func (d *Decoder) AddProfile(p Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addProfileLocked(p)
}

func (d *Decoder) addProfileLocked(p Profile) {
	patterns := p.Patterns()
	for _, pat := range patterns {
		d.removeLocked(pat)
		d.patterns = append(d.patterns, pat)
	}
	log.Debug("input: added profile %q (%d patterns, %d registered)", p.Name(), len(patterns), len(d.patterns))
}

// ReplacePatterns removes every pattern in remove and then registers the
// profiles in add, all under one lock, so no Next call sees the registry
// half swapped.
func (d *Decoder) ReplacePatterns(remove []Pattern, add ...Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range remove {
		d.removeLocked(p)
	}
	for _, p := range add {
		d.addProfileLocked(p)
	}
}

// Patterns returns a snapshot of the registry in registration order.
func (d *Decoder) Patterns() []Pattern {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Pattern, len(d.patterns))
	copy(out, d.patterns)
	return out
}

// RemovePattern removes the registered pattern equal to p.
// Returns true if one was found.
func (d *Decoder) RemovePattern(p Pattern) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removeLocked(p)
}

func (d *Decoder) removeLocked(p Pattern) bool {
	for i, existing := range d.patterns {
		if SamePattern(existing, p) {
			d.patterns = append(d.patterns[:i], d.patterns[i+1:]...)
			return true
		}
	}
	return false
}

// LastReportedPosition returns the cursor position from the most recent
// cursor report, and false if none has been seen.
func (d *Decoder) LastReportedPosition() (key.Position, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastPos, d.hasPos
}

// readStatus is the outcome of trying to pull one more rune from the source.
type readStatus int

const (
	readRune readStatus = iota
	readNone            // nothing available without blocking
	readEOF
)

// Next decodes the next event. With blocking set and nothing resolved yet,
// it blocks on the source for the first rune; otherwise it only reads what
// is ready, waiting at most the escape timeout when a shorter match could
// still be extended.
//
// The bool result is false when no event is available yet. End of input is reported as a
// key.KeyEOF event, repeatedly once the buffer is drained. Source errors are
// returned wrapped and leave the pending buffer untouched.
func (d *Decoder) Next(blocking bool) (key.Key, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var (
		best    key.Key
		hasBest bool
		bestLen int
		curLen  int
	)

scan:
	for {
		if curLen < len(d.buf) {
			// Re-examine runes left over from an earlier call.
			curLen++
		} else {
			r, status, err := d.readMore(blocking, hasBest)
			if err != nil {
				return key.Key{}, false, err
			}
			switch status {
			case readNone:
				if hasBest {
					break scan
				}
				return key.Key{}, false, nil
			case readEOF:
				d.seenEOF = true
				if len(d.buf) == 0 {
					return key.Key{Type: key.KeyEOF}, true, nil
				}
				break scan
			}
			d.buf = append(d.buf, r)
			curLen++
		}

		m := d.match(d.buf[:curLen])
		switch {
		case m.hasFull:
			best, hasBest, bestLen = m.full, true, curLen
			if !m.partial {
				break scan
			}
		case m.partial:
			// Nothing complete yet but a longer match is possible.
		case hasBest:
			// The extension failed; fall back to the last complete match.
			break scan
		default:
			n := curLen
			if d.discard == DiscardFirstRune {
				n = 1
			}
			log.Debug("input: discarding %d unmatched rune(s) %q", n, string(d.buf[:n]))
			d.consume(n)
			curLen = 0
		}
	}

	if !hasBest {
		if d.seenEOF {
			d.buf = d.buf[:0]
			return key.Key{Type: key.KeyEOF}, true, nil
		}
		return key.Key{}, false, nil
	}

	if best.Type == key.KeyCursorLocation {
		best = d.cursorReport(best, d.buf[:bestLen])
	}
	d.consume(bestLen)
	return best, true, nil
}

// readMore pulls one rune from the source if the read policy allows it.
func (d *Decoder) readMore(blocking, hasBest bool) (rune, readStatus, error) {
	if d.seenEOF {
		return 0, readEOF, nil
	}

	ready, err := d.src.Ready()
	if err != nil {
		return 0, readNone, fmt.Errorf("polling input: %w", err)
	}
	if !ready && hasBest {
		if ready, err = d.waitReady(); err != nil {
			return 0, readNone, fmt.Errorf("polling input: %w", err)
		}
	}
	if !ready && !(blocking && !hasBest) {
		return 0, readNone, nil
	}

	r, _, err := d.src.ReadRune()
	if errors.Is(err, io.EOF) {
		return 0, readEOF, nil
	}
	if err != nil {
		return 0, readNone, fmt.Errorf("reading input: %w", err)
	}
	return r, readRune, nil
}

// waitReady gives a slow escape sequence the escape timeout to continue.
func (d *Decoder) waitReady() (bool, error) {
	if d.escapeTimeout <= 0 {
		return false, nil
	}
	if w, ok := d.src.(ReadyWaiter); ok {
		return w.WaitReady(d.escapeTimeout)
	}
	time.Sleep(d.escapeTimeout)
	return d.src.Ready()
}

// cursorReport applies the Ctrl+F3 collision rule and records the position.
// A report that does not parse clears the recorded position and is passed
// through as decoded by its pattern.
func (d *Decoder) cursorReport(k key.Key, seq []rune) key.Key {
	pos, ok := ParseCursorReport(seq)
	if !ok {
		d.lastPos, d.hasPos = key.Position{}, false
		return k
	}
	if pos == ctrlF3Report {
		return key.Key{Type: key.KeyF3, Ctrl: true}
	}
	d.lastPos, d.hasPos = pos, true
	k.Position = pos
	return k
}

// consume drops n runes from the front of the pending buffer.
func (d *Decoder) consume(n int) {
	if n >= len(d.buf) {
		d.buf = d.buf[:0]
		return
	}
	copy(d.buf, d.buf[n:])
	d.buf = d.buf[:len(d.buf)-n]
}

// Pending returns the number of buffered runes not yet resolved.
func (d *Decoder) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buf)
}
