// ABOUTME: Single-rune and literal patterns: exact sequences, printable runes, C0 controls, and ESC-prefixed Alt keys.
// ABOUTME: All are comparable values so re-registering an equal pattern replaces the earlier one.

package pattern

import (
	"strings"

	"github.com/mauromedda/keyview/pkg/tui/key"
)

const esc = 0x1b

// Basic matches one exact rune sequence.
type Basic struct {
	Seq string
	Key key.Key
}

func (b Basic) Admits(seq []rune) bool {
	return len(seq) > 0 && strings.HasPrefix(b.Seq, string(seq))
}

func (b Basic) Complete(seq []rune) bool { return b.Seq == string(seq) }

func (b Basic) Decode([]rune) key.Key { return b.Key }

// Char matches a single printable rune.
type Char struct{}

func (Char) Admits(seq []rune) bool   { return len(seq) == 1 && printable(seq[0]) }
func (Char) Complete(seq []rune) bool { return len(seq) == 1 }
func (Char) Decode(seq []rune) key.Key {
	return key.Key{Type: key.KeyRune, Rune: seq[0]}
}

// Control matches a C0 control character as Ctrl plus a letter. Tab, CR,
// LF, BS and ESC have their own keys and are left to Basic patterns.
type Control struct{}

func (Control) Admits(seq []rune) bool {
	if len(seq) != 1 || seq[0] >= 0x20 {
		return false
	}
	switch seq[0] {
	case '\t', '\r', '\n', 0x08, esc:
		return false
	}
	_, ok := key.CtrlRune(byte(seq[0]))
	return ok
}

func (Control) Complete(seq []rune) bool { return len(seq) == 1 }

func (Control) Decode(seq []rune) key.Key {
	r, _ := key.CtrlRune(byte(seq[0]))
	return key.Key{Type: key.KeyRune, Rune: r, Ctrl: true}
}

// AltChar matches ESC followed by one key, the way terminals send Alt
// combinations: ESC x is Alt+x, ESC ^C is Ctrl+Alt+c, ESC CR is Alt+Enter.
// ESC ESC is not claimed.
type AltChar struct{}

func (AltChar) Admits(seq []rune) bool {
	switch len(seq) {
	case 1:
		return seq[0] == esc
	case 2:
		return seq[0] == esc && altKey(seq[1]).Type != key.KeyUnknown
	}
	return false
}

func (AltChar) Complete(seq []rune) bool { return len(seq) == 2 }

func (AltChar) Decode(seq []rune) key.Key {
	k := altKey(seq[1])
	k.Alt = true
	return k
}

func altKey(r rune) key.Key {
	if r == esc {
		return key.Key{Type: key.KeyUnknown}
	}
	return key.ParseKey(string(r))
}

// printable excludes C0, DEL and C1 controls.
func printable(r rune) bool {
	return r >= 0x20 && r != 0x7f && (r < 0x80 || r >= 0xa0)
}
