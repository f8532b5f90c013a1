// ABOUTME: Panic guards that take the terminal out of raw mode before a crash report is printed.
// ABOUTME: RestoreOnPanic exits the process; RecoverGoroutine lets the owner of the terminal shut down.

package terminal

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

// RestoreOnPanic should be deferred at the top of main. On panic it exits
// raw mode, prints the panic value and stack, and exits with code 1.
func RestoreOnPanic(t Terminal) {
	if r := recover(); r != nil {
		restoreAfterPanic(t, os.Stderr, "panic", r)
		os.Exit(1)
	}
}

// RecoverGoroutine should be deferred at the top of goroutines that run
// while the terminal is raw, such as the key dispatcher.
func RecoverGoroutine(t Terminal) {
	if r := recover(); r != nil {
		restoreAfterPanic(t, os.Stderr, "goroutine panic", r)
	}
}

func restoreAfterPanic(t Terminal, w io.Writer, label string, r any) {
	_, _ = t.Write([]byte("\x1b[?25h")) // show cursor
	_ = t.ExitRawMode()
	fmt.Fprintf(w, "\r\n%s: %v\r\n\r\n%s\r\n", label, r, debug.Stack())
}
