// ABOUTME: JSON event stream for keyview -json: one easyjson-encoded object per decoded key
// ABOUTME: Lines end in CRLF while the terminal is raw, since output post-processing is off

package main

import (
	"fmt"
	"io"

	"github.com/mailru/easyjson"
	"github.com/mauromedda/keyview/pkg/tui/key"
)

type jsonStream struct {
	w   io.Writer
	eol string
	err error
}

func newJSONStream(w io.Writer, raw bool) *jsonStream {
	eol := "\n"
	if raw {
		eol = "\r\n"
	}
	return &jsonStream{w: w, eol: eol}
}

// write emits k. The first failure is kept in s.err.
func (s *jsonStream) write(k key.Key) error {
	data, err := easyjson.Marshal(k)
	if err == nil {
		_, err = s.w.Write(append(data, s.eol...))
	}
	if err != nil {
		err = fmt.Errorf("writing event: %w", err)
		if s.err == nil {
			s.err = err
		}
	}
	return err
}
