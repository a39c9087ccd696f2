package transport

import (
	"context"
	"errors"
)

var (
	// ErrWouldBlock reports that an attempt could not make progress right now
	// even though readiness was signalled. Callers wait and try again.
	ErrWouldBlock = errors.New("operation would block")
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("transport closed")
)

// Transport is a bidirectional byte stream driven by readiness signals.
//
// Readable and Writable suspend until an attempt is likely to succeed. A
// signal is a hint, not a guarantee: TryRead and TryWrite may still return
// ErrWouldBlock. Any other error from TryRead or TryWrite is fatal for the
// operation that observed it.
type Transport interface {
	// Readable blocks until data may be available, ctx is done, or the
	// transport failed.
	Readable(ctx context.Context) error
	// Writable blocks until capacity may be available, ctx is done, or the
	// transport failed.
	Writable(ctx context.Context) error
	// TryRead reads at most len(p) bytes without blocking.
	TryRead(p []byte) (int, error)
	// TryWrite writes a prefix of p without blocking and reports its length.
	TryWrite(p []byte) (int, error)
}

// IsWouldBlock reports whether err is a spurious readiness failure.
func IsWouldBlock(err error) bool { return errors.Is(err, ErrWouldBlock) }
