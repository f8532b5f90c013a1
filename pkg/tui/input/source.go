// ABOUTME: Source contract for the Decoder plus ReaderSource, a readiness-aware adapter over any io.Reader.
// ABOUTME: A background read loop fills a byte buffer so Ready and WaitReady can answer without blocking.

package input

import (
	"errors"
	"io"
	"sync"
	"time"
	"unicode/utf8"
)

const readBufSize = 256

// ErrClosed is returned by reads on a closed source.
var ErrClosed = errors.New("input source closed")

// Source is a rune stream that can report whether a read would block.
type Source interface {
	// ReadRune returns the next rune, blocking until one is available.
	// It returns io.EOF at end of input.
	ReadRune() (rune, int, error)
	// Ready reports whether ReadRune would return immediately. It is also
	// true at end of input and after an error, so the caller observes them.
	Ready() (bool, error)
}

// ReadyWaiter is implemented by sources that can wait for readiness with a
// deadline. The Decoder uses it for the escape timeout so a sequence that
// completes early resolves early.
type ReadyWaiter interface {
	WaitReady(timeout time.Duration) (bool, error)
}

// ReaderSource adapts an io.Reader into a Source.
type ReaderSource struct {
	reader io.Reader

	mu     sync.Mutex
	buf    []byte
	err    error
	closed bool

	notify chan struct{}
	done   chan struct{}
}

// NewReaderSource starts reading r in the background.
func NewReaderSource(r io.Reader) *ReaderSource {
	s := &ReaderSource{
		reader: r,
		buf:    make([]byte, 0, readBufSize),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// readLoop copies reader output into buf until the reader fails or the
// source is closed.
func (s *ReaderSource) readLoop() {
	tmp := make([]byte, readBufSize)
	for {
		n, err := s.reader.Read(tmp)

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.buf = append(s.buf, tmp[:n]...)
		if err != nil {
			s.err = err
		}
		s.mu.Unlock()

		s.signal()
		if err != nil {
			return
		}
	}
}

func (s *ReaderSource) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// readyLocked requires s.mu.
func (s *ReaderSource) readyLocked() bool {
	if s.closed || s.err != nil {
		return true
	}
	return utf8.FullRune(s.buf)
}

// Ready implements Source.
func (s *ReaderSource) Ready() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked(), nil
}

// WaitReady implements ReadyWaiter.
func (s *ReaderSource) WaitReady(timeout time.Duration) (bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if ready, _ := s.Ready(); ready {
			return true, nil
		}
		select {
		case <-s.notify:
		case <-s.done:
			return true, nil
		case <-timer.C:
			return s.Ready()
		}
	}
}

// ReadRune implements Source. Invalid UTF-8 decodes as utf8.RuneError, one
// byte at a time.
func (s *ReaderSource) ReadRune() (rune, int, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return 0, 0, ErrClosed
		}
		if len(s.buf) > 0 && (utf8.FullRune(s.buf) || s.err != nil) {
			r, size := utf8.DecodeRune(s.buf)
			s.buf = s.buf[:copy(s.buf, s.buf[size:])]
			s.mu.Unlock()
			return r, size, nil
		}
		if err := s.err; err != nil {
			s.mu.Unlock()
			return 0, 0, err
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-s.done:
		}
	}
}

// Close stops the source. Pending and future reads return ErrClosed. The
// underlying reader is not closed; the read loop exits after its next Read.
func (s *ReaderSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return nil
}
