// ABOUTME: VirtualTerminal implements Terminal for testing without a real TTY.
// ABOUTME: Captures output, queues typed input, and answers cursor position queries like a real terminal.

package terminal

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// VirtualTerminal is a fake Terminal for unit tests. Bytes passed to Type
// arrive on Input in order; writing QueryCursorPosition queues a report of
// the current cursor position.
type VirtualTerminal struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	width    int
	height   int
	row, col int
	rawMode  bool
	enters   int
	exits    int

	input *queueReader
}

// NewVirtualTerminal returns a VirtualTerminal with the cursor at 1,1.
func NewVirtualTerminal(width, height int) *VirtualTerminal {
	return &VirtualTerminal{
		width:  width,
		height: height,
		row:    1,
		col:    1,
		input:  newQueueReader(),
	}
}

// EnterRawMode records a raw-mode entry.
func (v *VirtualTerminal) EnterRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rawMode = true
	v.enters++
	return nil
}

// ExitRawMode records a raw-mode exit.
func (v *VirtualTerminal) ExitRawMode() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rawMode = false
	v.exits++
	return nil
}

// Size returns the configured terminal dimensions.
func (v *VirtualTerminal) Size() (width, height int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.width, v.height, nil
}

// Write appends data to the output buffer and answers cursor queries.
func (v *VirtualTerminal) Write(p []byte) (int, error) {
	v.mu.Lock()
	n, err := v.buf.Write(p)
	row, col := v.row, v.col
	v.mu.Unlock()
	if err != nil {
		return n, fmt.Errorf("writing to virtual buffer: %w", err)
	}

	for range strings.Count(string(p), QueryCursorPosition) {
		v.input.push(fmt.Appendf(nil, "\x1b[%d;%dR", row, col))
	}
	return n, nil
}

// Input returns the stream of typed bytes and query replies.
func (v *VirtualTerminal) Input() io.Reader {
	return v.input
}

// --- Test helpers (not part of Terminal interface) ---

// Type queues s as keyboard input.
func (v *VirtualTerminal) Type(s string) {
	v.input.push([]byte(s))
}

// CloseInput ends the input stream; reads then return io.EOF.
func (v *VirtualTerminal) CloseInput() {
	v.input.close()
}

// SetCursor sets the position reported for cursor queries.
func (v *VirtualTerminal) SetCursor(row, col int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.row, v.col = row, col
}

// Output returns everything written so far.
func (v *VirtualTerminal) Output() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.buf.String()
}

// IsRawMode reports whether raw mode is currently active.
func (v *VirtualTerminal) IsRawMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.rawMode
}

// RawModeCounts returns how many times raw mode was entered and exited.
func (v *VirtualTerminal) RawModeCounts() (enters, exits int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.enters, v.exits
}

// queueReader is an unbounded FIFO of byte chunks exposed as an io.Reader.
type queueReader struct {
	mu     sync.Mutex
	cond   *sync.Cond
	data   []byte
	closed bool
}

func newQueueReader() *queueReader {
	q := &queueReader{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queueReader) push(p []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.data = append(q.data, p...)
	q.cond.Broadcast()
}

func (q *queueReader) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

func (q *queueReader) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.data) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, q.data)
	q.data = q.data[n:]
	return n, nil
}
