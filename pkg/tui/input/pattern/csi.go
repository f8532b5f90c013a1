// ABOUTME: Parameterized CSI patterns: xterm modified keys, cursor position reports, and kitty CSI-u keys.
// ABOUTME: Each admits a prefix only while it can still become a sequence it decodes.

package pattern

import (
	"strings"

	"github.com/mauromedda/keyview/pkg/tui/input"
	"github.com/mauromedda/keyview/pkg/tui/key"
)

const (
	// maxParamRunes bounds the parameter bytes buffered for one sequence.
	maxParamRunes = 16
	// maxReportDigits matches the bound used by input.ParseCursorReport.
	maxReportDigits = 5

	csiFinals   = "ABCDHFPQS~"
	kittyFinals = "u"
)

// CSI matches xterm-style modified keys such as ESC [ 1 ; 5 A (Ctrl+Up) and
// numeric keys such as ESC [ 3 ~ or ESC [ 15 ; 2 ~ (Shift+F5). Sequences
// ending in R are left to CursorReport.
type CSI struct{}

func (CSI) Admits(seq []rune) bool   { return admitCSI(seq, "0123456789;", csiFinals) }
func (CSI) Complete(seq []rune) bool { return completeCSI(seq, csiFinals) }
func (CSI) Decode(seq []rune) key.Key {
	k, _ := key.ParseKittyKey(string(seq))
	return k
}

// KittyKey matches kitty keyboard protocol CSI u sequences.
type KittyKey struct{}

func (KittyKey) Admits(seq []rune) bool   { return admitCSI(seq, "0123456789;:", kittyFinals) }
func (KittyKey) Complete(seq []rune) bool { return completeCSI(seq, kittyFinals) }
func (KittyKey) Decode(seq []rune) key.Key {
	k, _ := key.ParseKittyKey(string(seq))
	return k
}

// admitCSI accepts ESC [ params... with an optional final rune at the end.
// A sequence that already has its final is admitted only if it decodes.
func admitCSI(seq []rune, params, finals string) bool {
	if len(seq) == 0 || seq[0] != esc {
		return false
	}
	if len(seq) == 1 {
		return true
	}
	if seq[1] != '[' || len(seq) > maxParamRunes+3 {
		return false
	}
	for i, r := range seq[2:] {
		if strings.ContainsRune(params, r) {
			continue
		}
		if i == len(seq)-3 && strings.ContainsRune(finals, r) {
			return completeCSI(seq, finals)
		}
		return false
	}
	return true
}

func completeCSI(seq []rune, finals string) bool {
	if len(seq) < 4 || !strings.ContainsRune(finals, seq[len(seq)-1]) {
		return false
	}
	_, ok := key.ParseKittyKey(string(seq))
	return ok
}

// CursorReport matches ESC [ row ; col R, the reply to ESC [ 6 n.
type CursorReport struct{}

func (CursorReport) Admits(seq []rune) bool {
	if len(seq) == 0 || seq[0] != esc {
		return false
	}
	if len(seq) == 1 {
		return true
	}
	if seq[1] != '[' {
		return false
	}

	field, digits := 0, 0
	for i, r := range seq[2:] {
		switch {
		case r >= '0' && r <= '9':
			digits++
			if digits > maxReportDigits {
				return false
			}
		case r == ';' && field == 0 && digits > 0:
			field, digits = 1, 0
		case r == 'R' && field == 1 && digits > 0:
			return i == len(seq)-3
		default:
			return false
		}
	}
	return true
}

func (CursorReport) Complete(seq []rune) bool {
	_, ok := input.ParseCursorReport(seq)
	return ok
}

func (CursorReport) Decode(seq []rune) key.Key {
	pos, _ := input.ParseCursorReport(seq)
	return key.Key{Type: key.KeyCursorLocation, Position: pos}
}
