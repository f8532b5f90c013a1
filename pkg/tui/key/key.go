// ABOUTME: Defines the Key event value produced by the input decoder and ParseKey for one-shot parsing.
// ABOUTME: Key carries a KeyType, an optional rune, Alt/Ctrl/Shift flags, and a cursor Position payload.

package key

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Key is a decoded terminal input event. It is a plain value and is safe to
// compare with ==.
type Key struct {
	Type     KeyType
	Rune     rune // For KeyRune
	Alt      bool
	Ctrl     bool
	Shift    bool
	Position Position // For KeyCursorLocation
}

// Position is a 1-based cell location as reported by the terminal.
type Position struct {
	Row int
	Col int
}

// KeyType enumerates the kinds of events the decoder can produce.
type KeyType int

const (
	KeyRune           KeyType = iota // Printable character
	KeyEnter                         // Enter / Return
	KeyTab                           // Tab
	KeyBackTab                       // Shift+Tab
	KeyBackspace                     // Backspace / DEL (0x7F)
	KeyDelete                        // Delete key
	KeyInsert                        // Insert key
	KeyUp                            // Arrow up
	KeyDown                          // Arrow down
	KeyLeft                          // Arrow left
	KeyRight                         // Arrow right
	KeyHome                          // Home
	KeyEnd                           // End
	KeyPageUp                        // Page Up
	KeyPageDown                      // Page Down
	KeyEscape                        // Escape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyCursorLocation // Reply to a cursor position query (ESC [ 6 n)
	KeyEOF            // Input source is exhausted
	KeyUnknown        // Unrecognized input
)

// ctrlKeys maps C0 control bytes that have no dedicated KeyType to the
// letter or symbol they are typed with.
var ctrlKeys = map[byte]rune{
	0x00: ' ',
	0x1c: '\\',
	0x1d: ']',
	0x1e: '^',
	0x1f: '_',
}

// CtrlRune returns the rune typed together with Ctrl to produce control byte b,
// and false if b is not a plain Ctrl combination.
func CtrlRune(b byte) (rune, bool) {
	if b >= 0x01 && b <= 0x1a {
		return rune('a' + b - 1), true
	}
	r, ok := ctrlKeys[b]
	return r, ok
}

// ParseKey parses one complete chunk of raw terminal input into a Key.
// It handles single runes, control characters, and escape sequences. Streams
// that may split or merge sequences go through the input.Decoder instead.
func ParseKey(data string) Key {
	if len(data) == 0 {
		return Key{Type: KeyUnknown}
	}

	// Single-byte fast path
	if len(data) == 1 {
		return parseSingleByte(data[0])
	}

	// Escape sequence path
	if data[0] == 0x1b {
		return parseEscapeSequence(data)
	}

	// Multi-byte UTF-8 rune
	r, size := utf8.DecodeRuneInString(data)
	if r == utf8.RuneError || size != len(data) {
		return Key{Type: KeyUnknown}
	}
	return Key{Type: KeyRune, Rune: r}
}

// parseSingleByte handles a single-byte input (ASCII or control character).
func parseSingleByte(b byte) Key {
	switch {
	case b == 0x0d, b == 0x0a:
		return Key{Type: KeyEnter}
	case b == 0x09:
		return Key{Type: KeyTab}
	case b == 0x7f, b == 0x08:
		return Key{Type: KeyBackspace}
	case b == 0x1b:
		return Key{Type: KeyEscape}
	case b >= 0x20 && b <= 0x7e:
		return Key{Type: KeyRune, Rune: rune(b)}
	}

	if r, ok := CtrlRune(b); ok {
		return Key{Type: KeyRune, Rune: r, Ctrl: true}
	}
	return Key{Type: KeyUnknown}
}

// parseEscapeSequence delegates to legacy and kitty parsers for ESC-prefixed data.
func parseEscapeSequence(data string) Key {
	if k, ok := ParseKittyKey(data); ok {
		return k
	}

	if k, ok := legacySequences[data]; ok {
		return k
	}

	// Alt+letter: ESC followed by a single printable byte (0x20..0x7e)
	if len(data) == 2 && data[1] >= 0x20 && data[1] <= 0x7e {
		return Key{Type: KeyRune, Rune: rune(data[1]), Alt: true}
	}

	return Key{Type: KeyUnknown}
}

// keyTypeNames provides human-readable labels for each KeyType.
var keyTypeNames = map[KeyType]string{
	KeyEnter:          "Enter",
	KeyTab:            "Tab",
	KeyBackTab:        "BackTab",
	KeyBackspace:      "Backspace",
	KeyDelete:         "Delete",
	KeyInsert:         "Insert",
	KeyUp:             "Up",
	KeyDown:           "Down",
	KeyLeft:           "Left",
	KeyRight:          "Right",
	KeyHome:           "Home",
	KeyEnd:            "End",
	KeyPageUp:         "PageUp",
	KeyPageDown:       "PageDown",
	KeyEscape:         "Escape",
	KeyF1:             "F1",
	KeyF2:             "F2",
	KeyF3:             "F3",
	KeyF4:             "F4",
	KeyF5:             "F5",
	KeyF6:             "F6",
	KeyF7:             "F7",
	KeyF8:             "F8",
	KeyF9:             "F9",
	KeyF10:            "F10",
	KeyF11:            "F11",
	KeyF12:            "F12",
	KeyCursorLocation: "CursorLocation",
	KeyEOF:            "EOF",
	KeyUnknown:        "Unknown",
}

// String returns the label of the key type.
func (t KeyType) String() string {
	if t == KeyRune {
		return "Rune"
	}
	if name, ok := keyTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("KeyType(%d)", int(t))
}

// String returns a human-readable representation of the Key for debug display.
func (k Key) String() string {
	switch k.Type {
	case KeyCursorLocation:
		return fmt.Sprintf("CursorLocation(%d,%d)", k.Position.Row, k.Position.Col)
	case KeyEOF, KeyUnknown:
		return keyTypeNames[k.Type]
	}

	var sb strings.Builder
	if k.Ctrl {
		sb.WriteString("Ctrl+")
	}
	if k.Alt {
		sb.WriteString("Alt+")
	}
	if k.Shift && k.Type != KeyBackTab {
		sb.WriteString("Shift+")
	}
	if k.Type == KeyRune {
		sb.WriteString(runeLabel(k.Rune))
	} else {
		sb.WriteString(k.Type.String())
	}
	return sb.String()
}

// IsModified reports whether any modifier flag is set.
func (k Key) IsModified() bool {
	return k.Alt || k.Ctrl || k.Shift
}

func runeLabel(r rune) string {
	if r == ' ' {
		return "Space"
	}
	return string(r)
}
