// ABOUTME: Defines the Terminal interface for raw mode, size queries, output, and keyboard input.
// ABOUTME: Also holds the cursor position query whose reply the input decoder parses.

package terminal

import (
	"fmt"
	"io"
)

// QueryCursorPosition asks the terminal to report the cursor position as
// ESC [ row ; col R on its input.
const QueryCursorPosition = "\x1b[6n"

// Terminal abstracts the terminal keyview reads keys from.
type Terminal interface {
	EnterRawMode() error
	ExitRawMode() error
	Size() (width, height int, err error)
	Write(p []byte) (n int, err error)
	Input() io.Reader
}

// RequestCursorPosition writes the cursor position query to w.
func RequestCursorPosition(w io.Writer) error {
	if _, err := io.WriteString(w, QueryCursorPosition); err != nil {
		return fmt.Errorf("requesting cursor position: %w", err)
	}
	return nil
}
