// ABOUTME: Dispatcher drives a Decoder in a loop and hands every decoded key to a callback.
// ABOUTME: Stops after delivering EOF, on a source error, or when its context is cancelled.

package input

import (
	"context"
	"io"

	"github.com/mauromedda/keyview/pkg/tui/key"
)

// Dispatcher pumps key events from a Decoder to onKey.
type Dispatcher struct {
	dec   *Decoder
	onKey func(key.Key)
}

// NewDispatcher creates a Dispatcher for dec that calls onKey for each event.
func NewDispatcher(dec *Decoder, onKey func(key.Key)) *Dispatcher {
	return &Dispatcher{dec: dec, onKey: onKey}
}

// Run blocks until the source ends, fails, or ctx is cancelled. It returns
// nil after delivering the EOF event and ctx.Err() on cancellation. If the
// decoder's source implements io.Closer it is closed on cancellation to
// release the blocked read; otherwise Run returns after the next event.
func (d *Dispatcher) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		if c, ok := d.dec.src.(io.Closer); ok {
			_ = c.Close()
		}
	})
	defer stop()

	for {
		k, ok, err := d.dec.Next(true)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		d.onKey(k)
		if k.Type == key.KeyEOF {
			return nil
		}
	}
}
