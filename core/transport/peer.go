package transport

import (
	"context"
	"errors"
	"io"
)

// Handler computes the reply for one request read by ServePeer.
type Handler func(req []byte) []byte

// EchoHandler replies with the request bytes.
func EchoHandler(req []byte) []byte { return req }

// ServePeer plays the remote side of a transport: every successful read is
// treated as one request and answered with h(req). It returns nil when the
// other end closes and ctx.Err() on cancellation.
func ServePeer(ctx context.Context, t Transport, h Handler) error {
	buf := make([]byte, 4096)
	for {
		if err := t.Readable(ctx); err != nil {
			return err
		}
		n, err := t.TryRead(buf)
		switch {
		case IsWouldBlock(err):
			continue
		case errors.Is(err, io.EOF), errors.Is(err, ErrClosed):
			return nil
		case err != nil:
			return err
		}

		req := append([]byte(nil), buf[:n]...)
		if err := WriteAll(ctx, t, h(req)); err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// WriteAll writes p completely, waiting for writability between partial
// writes.
func WriteAll(ctx context.Context, t Transport, p []byte) error {
	for len(p) > 0 {
		if err := t.Writable(ctx); err != nil {
			return err
		}
		n, err := t.TryWrite(p)
		if IsWouldBlock(err) {
			continue
		}
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
