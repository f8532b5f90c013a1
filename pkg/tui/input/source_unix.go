// ABOUTME: FileSource reads runes from a terminal file descriptor, using poll(2) for readiness.
// ABOUTME: Readiness means a whole rune is buffered; blocking reads poll in short slices so Close can interrupt them.

//go:build unix

package input

import (
	"bufio"
	"errors"
	"os"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// pollSlice bounds each blocking poll so a closed source is noticed.
const pollSlice = 100 * time.Millisecond

// FileSource is a Source over an *os.File such as os.Stdin.
type FileSource struct {
	fd     int
	br     *bufio.Reader
	closed atomic.Bool
}

// NewFileSource wraps f. The file is not closed by Close.
func NewFileSource(f *os.File) *FileSource {
	return &FileSource{
		fd: int(f.Fd()),
		br: bufio.NewReaderSize(f, readBufSize),
	}
}

// Ready implements Source.
func (s *FileSource) Ready() (bool, error) {
	return s.ready(0)
}

// WaitReady implements ReadyWaiter.
func (s *FileSource) WaitReady(timeout time.Duration) (bool, error) {
	return s.ready(timeout)
}

// ReadRune implements Source.
func (s *FileSource) ReadRune() (rune, int, error) {
	for {
		ready, err := s.ready(pollSlice)
		if err != nil {
			return 0, 0, err
		}
		if s.closed.Load() {
			return 0, 0, ErrClosed
		}
		if ready {
			return s.br.ReadRune()
		}
	}
}

// ready waits up to timeout until a whole rune is buffered, pulling bytes
// in one read at a time only when poll says the read will not block.
func (s *FileSource) ready(timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		if s.closed.Load() || s.fullRuneBuffered() {
			return true, nil
		}
		readable, err := s.poll(max(time.Until(deadline), 0))
		if err != nil || !readable {
			return false, err
		}
		if _, err := s.br.Peek(s.br.Buffered() + 1); err != nil && !errors.Is(err, bufio.ErrBufferFull) {
			// EOF or a read error; ReadRune reports it without blocking.
			return true, nil
		}
	}
}

func (s *FileSource) fullRuneBuffered() bool {
	n := s.br.Buffered()
	if n == 0 {
		return false
	}
	buf, _ := s.br.Peek(n)
	return utf8.FullRune(buf)
}

// Close makes pending and future reads return ErrClosed.
func (s *FileSource) Close() error {
	s.closed.Store(true)
	return nil
}

// poll waits up to timeout for the descriptor to become readable. Hangups
// and errors count as readable so the following read reports them.
func (s *FileSource) poll(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{
		{Fd: int32(s.fd), Events: unix.POLLIN},
	}
	for {
		n, err := unix.Poll(fds, int(timeout/time.Millisecond))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		return fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
	}
}
