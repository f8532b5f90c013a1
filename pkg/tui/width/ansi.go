// ABOUTME: ANSI stripping for width measurement and caret notation for raw input sequences
// ABOUTME: Caret renders control bytes the way stty does (ESC as ^[) so sequences are printable

package width

import "strings"

// StripANSI removes ANSI escape sequences (CSI, OSC, two-byte ESC) from s.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			i = skipANSISequence(s, i)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// skipANSISequence returns the index just past the sequence at s[i].
func skipANSISequence(s string, i int) int {
	i++ // ESC
	if i >= len(s) {
		return i
	}

	switch s[i] {
	case '[':
		// ESC [ params final(0x40-0x7E)
		for i++; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7e {
				return i + 1
			}
		}
		return i
	case ']':
		// ESC ] ... BEL or ST
		for i++; i < len(s); i++ {
			if s[i] == '\x07' {
				return i + 1
			}
			if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return i
	default:
		return i + 1
	}
}

// Caret renders control characters in seq in caret notation: ESC becomes
// ^[, DEL becomes ^?, and other C0 bytes become ^A..^_. Space is shown as
// "␠" so trailing blanks stay visible.
func Caret(seq string) string {
	var b strings.Builder
	for _, r := range seq {
		switch {
		case r < 0x20:
			b.WriteByte('^')
			b.WriteByte(byte(r) + '@')
		case r == 0x7f:
			b.WriteString("^?")
		case r == ' ':
			b.WriteRune('␠')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
