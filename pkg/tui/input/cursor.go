// ABOUTME: Parsing of cursor position reports (ESC [ row ; col R) sent in reply to ESC [ 6 n.
// ABOUTME: Shared by the Decoder's Ctrl+F3 collision check and the cursor-report pattern.

package input

import "github.com/mauromedda/keyview/pkg/tui/key"

// maxReportDigits bounds each coordinate; no terminal is 100000 cells wide.
const maxReportDigits = 5

// ParseCursorReport parses a complete ESC [ row ; col R sequence.
func ParseCursorReport(seq []rune) (key.Position, bool) {
	if len(seq) < 6 || seq[0] != 0x1b || seq[1] != '[' || seq[len(seq)-1] != 'R' {
		return key.Position{}, false
	}

	body := seq[2 : len(seq)-1]
	row, rest, ok := parseReportNumber(body)
	if !ok || len(rest) == 0 || rest[0] != ';' {
		return key.Position{}, false
	}
	col, rest, ok := parseReportNumber(rest[1:])
	if !ok || len(rest) != 0 {
		return key.Position{}, false
	}
	return key.Position{Row: row, Col: col}, true
}

// parseReportNumber reads a run of 1..maxReportDigits decimal digits.
func parseReportNumber(seq []rune) (int, []rune, bool) {
	n, i := 0, 0
	for i < len(seq) && seq[i] >= '0' && seq[i] <= '9' {
		if i == maxReportDigits {
			return 0, nil, false
		}
		n = n*10 + int(seq[i]-'0')
		i++
	}
	if i == 0 {
		return 0, nil, false
	}
	return n, seq[i:], true
}
