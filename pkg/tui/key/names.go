// ABOUTME: Canonical key names and the "ctrl+shift+f5" key spec syntax used in profile files.
// ABOUTME: ParseSpec builds a Key from a spec string; KeyName/KeyByName map KeyTypes to config names.

package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnknownKey is returned by ParseSpec when the key part of a spec is not recognized.
var ErrUnknownKey = errors.New("unknown key")

// keyToName maps KeyType constants to canonical config names.
var keyToName = map[KeyType]string{
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackTab:   "backtab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyInsert:    "insert",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdown",
	KeyEscape:    "escape",
	KeyF1:        "f1",
	KeyF2:        "f2",
	KeyF3:        "f3",
	KeyF4:        "f4",
	KeyF5:        "f5",
	KeyF6:        "f6",
	KeyF7:        "f7",
	KeyF8:        "f8",
	KeyF9:        "f9",
	KeyF10:       "f10",
	KeyF11:       "f11",
	KeyF12:       "f12",
}

// nameToKey is the reverse lookup, built from keyToName
var nameToKey map[string]KeyType

func init() {
	nameToKey = make(map[string]KeyType, len(keyToName)+6)
	for k, v := range keyToName {
		nameToKey[v] = k
	}
	// Aliases
	nameToKey["esc"] = KeyEscape
	nameToKey["return"] = KeyEnter
	nameToKey["shift+tab"] = KeyBackTab
	nameToKey["pageup"] = KeyPageUp
	nameToKey["pagedown"] = KeyPageDown
	nameToKey["ins"] = KeyInsert
}

// KeyName returns the canonical config name for a KeyType.
// Returns "" for KeyRune and the non-key event types.
func KeyName(t KeyType) string {
	return keyToName[t]
}

// KeyByName resolves a canonical name or alias to a KeyType.
func KeyByName(name string) (KeyType, bool) {
	t, ok := nameToKey[strings.ToLower(name)]
	return t, ok
}

// ParseSpec parses a key spec such as "up", "ctrl+c", "alt+shift+f5" or
// "space". A single character after the modifiers is a KeyRune.
func ParseSpec(spec string) (Key, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return Key{}, fmt.Errorf("parsing key spec: %w: empty", ErrUnknownKey)
	}
	if t, ok := KeyByName(s); ok && t == KeyBackTab {
		return Key{Type: KeyBackTab, Shift: true}, nil
	}

	var k Key
	for {
		lower := strings.ToLower(s)
		switch {
		case strings.HasPrefix(lower, "ctrl+") && len(s) > 5:
			k.Ctrl = true
			s = s[5:]
			continue
		case strings.HasPrefix(lower, "alt+") && len(s) > 4:
			k.Alt = true
			s = s[4:]
			continue
		case strings.HasPrefix(lower, "shift+") && len(s) > 6:
			k.Shift = true
			s = s[6:]
			continue
		}
		break
	}

	if strings.EqualFold(s, "space") {
		k.Type = KeyRune
		k.Rune = ' '
		return k, nil
	}
	if t, ok := KeyByName(s); ok {
		k.Type = t
		if t == KeyBackTab {
			k.Shift = true
		}
		return k, nil
	}
	if r, size := utf8.DecodeRuneInString(s); size == len(s) && r != utf8.RuneError {
		k.Type = KeyRune
		k.Rune = r
		return k, nil
	}
	return Key{}, fmt.Errorf("parsing key spec %q: %w", spec, ErrUnknownKey)
}

// Spec formats k in the syntax accepted by ParseSpec.
func (k Key) Spec() string {
	var sb strings.Builder
	if k.Ctrl {
		sb.WriteString("ctrl+")
	}
	if k.Alt {
		sb.WriteString("alt+")
	}
	if k.Shift && k.Type != KeyBackTab {
		sb.WriteString("shift+")
	}
	switch {
	case k.Type == KeyRune && k.Rune == ' ':
		sb.WriteString("space")
	case k.Type == KeyRune:
		sb.WriteRune(k.Rune)
	default:
		sb.WriteString(KeyName(k.Type))
	}
	return sb.String()
}
