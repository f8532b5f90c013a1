// ABOUTME: Parser for modified-key CSI sequences: kitty CSI u, xterm CSI n;m~ and CSI 1;m<letter>.
// ABOUTME: Shares one modifier decoder (parameter = 1 + bitmask) between the three forms.

package key

import (
	"strconv"
	"strings"
)

// Modifier bits of the xterm/kitty modifier parameter, after subtracting 1.
// Kitty adds super, hyper, meta, caps lock and num lock above these; they
// have no Key flag and are ignored.
const (
	modShift = 1 << iota
	modAlt
	modCtrl
)

// maxModifierParam is 1 + all eight kitty modifier bits.
const maxModifierParam = 256

// kittyRelease is the kitty event type for a key release.
const kittyRelease = 3

// tildeKeyTypes maps the number of CSI number~ to its key.
var tildeKeyTypes = map[int]KeyType{
	1: KeyHome, 2: KeyInsert, 3: KeyDelete, 4: KeyEnd,
	5: KeyPageUp, 6: KeyPageDown, 7: KeyHome, 8: KeyEnd,
	11: KeyF1, 12: KeyF2, 13: KeyF3, 14: KeyF4, 15: KeyF5,
	17: KeyF6, 18: KeyF7, 19: KeyF8, 20: KeyF9, 21: KeyF10,
	23: KeyF11, 24: KeyF12,
}

// letterKeyTypes maps the final byte of CSI 1;m<letter> to its key.
// 'R' is absent: CSI 1;5R collides with a cursor position report, and
// kitty sends F3 as CSI 13~ anyway.
var letterKeyTypes = map[byte]KeyType{
	'A': KeyUp, 'B': KeyDown, 'C': KeyRight, 'D': KeyLeft,
	'H': KeyHome, 'F': KeyEnd,
	'P': KeyF1, 'Q': KeyF2, 'S': KeyF4,
}

// ModifierParam applies a modifier parameter (1 + bitmask) to k. It reports
// false when param is out of range.
func ModifierParam(k *Key, param int) bool {
	if param < 1 || param > maxModifierParam {
		return false
	}
	mask := param - 1
	k.Shift = k.Shift || mask&modShift != 0
	k.Alt = k.Alt || mask&modAlt != 0
	k.Ctrl = k.Ctrl || mask&modCtrl != 0
	return true
}

// ParseKittyKey decodes one complete sequence in any of these forms:
//
//	ESC [ code[:alternates] [; mods[:event]] u
//	ESC [ number [; mods] ~
//	ESC [ 1 ; mods letter
//
// Key releases and anything else report false.
func ParseKittyKey(data string) (Key, bool) {
	body, ok := strings.CutPrefix(data, "\x1b[")
	if !ok || len(body) < 2 {
		return Key{}, false
	}
	final := body[len(body)-1]
	first, mods, hasMods := strings.Cut(body[:len(body)-1], ";")

	var (
		k     Key
		event int
	)
	switch final {
	case 'u':
		code, _, _ := strings.Cut(first, ":")
		cp, err := strconv.Atoi(code)
		if err != nil || cp < 0 {
			return Key{}, false
		}
		k = codepointKey(rune(cp))
	case '~':
		n, err := strconv.Atoi(first)
		if err != nil {
			return Key{}, false
		}
		kt, known := tildeKeyTypes[n]
		if !known {
			return Key{}, false
		}
		k = Key{Type: kt}
	default:
		kt, known := letterKeyTypes[final]
		if !known || !hasMods || (first != "" && first != "1") {
			return Key{}, false
		}
		k = Key{Type: kt}
	}

	if hasMods {
		param, ev, _ := strings.Cut(mods, ":")
		n, err := strconv.Atoi(param)
		if err != nil || !ModifierParam(&k, n) {
			return Key{}, false
		}
		if ev != "" {
			if event, err = strconv.Atoi(ev); err != nil {
				return Key{}, false
			}
		}
	}
	if event == kittyRelease {
		return Key{}, false
	}
	if k.Type == KeyTab && k.Shift {
		k.Type = KeyBackTab
	}
	return k, true
}

// codepointKey maps a kitty key code to an unmodified Key.
func codepointKey(cp rune) Key {
	switch cp {
	case '\r':
		return Key{Type: KeyEnter}
	case '\t':
		return Key{Type: KeyTab}
	case 0x7f:
		return Key{Type: KeyBackspace}
	case 0x1b:
		return Key{Type: KeyEscape}
	}
	return Key{Type: KeyRune, Rune: cp}
}
