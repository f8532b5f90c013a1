// ABOUTME: FileSource fallback for platforms without poll(2), backed by a ReaderSource read loop.
// ABOUTME: Readiness comes from the background goroutine's buffer instead of the descriptor.

//go:build !unix

package input

import "os"

// FileSource is a Source over an *os.File such as os.Stdin.
type FileSource struct {
	*ReaderSource
}

// NewFileSource wraps f. The file is not closed by Close.
func NewFileSource(f *os.File) *FileSource {
	return &FileSource{ReaderSource: NewReaderSource(f)}
}
