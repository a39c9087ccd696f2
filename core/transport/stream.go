package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

type StreamOptions struct {
	// ReadSize is the size of a single read on the wrapped stream (default 4096).
	ReadSize int
	// MaxBuffered pauses the reader goroutine once this many bytes wait to be
	// consumed (default 64 KiB).
	MaxBuffered int
	// WriteTimeout bounds a single TryWrite when the stream supports write
	// deadlines (default 50ms, negative disables). A timed out write reports
	// its partial progress, or ErrWouldBlock if nothing was accepted. Streams
	// without deadline support block inside TryWrite.
	WriteTimeout time.Duration
	Log          *slog.Logger
}

const defaultWriteTimeout = 50 * time.Millisecond

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Stream adapts a blocking io.ReadWriteCloser to Transport.
type Stream struct {
	rwc  io.ReadWriteCloser
	log  *slog.Logger
	opts StreamOptions

	mu      sync.Mutex
	buf     []byte
	readErr error // sticky, surfaced after buf drains
	closed  bool
	changed signal

	done chan struct{}
}

// NewStream takes ownership of rwc and starts reading from it.
func NewStream(rwc io.ReadWriteCloser, opts StreamOptions) *Stream {
	if opts.ReadSize <= 0 {
		opts.ReadSize = 4096
	}
	if opts.MaxBuffered <= 0 {
		opts.MaxBuffered = 64 * 1024
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}

	s := &Stream{
		rwc:     rwc,
		log:     opts.Log.With(slog.String("transport", "stream")),
		opts:    opts,
		changed: newSignal(),
		done:    make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *Stream) pump() {
	defer close(s.done)

	tmp := make([]byte, s.opts.ReadSize)
	for {
		// backpressure: wait until the consumer caught up
		s.mu.Lock()
		for len(s.buf) >= s.opts.MaxBuffered && !s.closed {
			ch := s.changed.wait()
			s.mu.Unlock()
			<-ch
			s.mu.Lock()
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}

		n, err := s.rwc.Read(tmp)

		s.mu.Lock()
		if n > 0 {
			s.buf = append(s.buf, tmp[:n]...)
		}
		if err != nil && s.readErr == nil {
			s.readErr = err
		}
		s.changed.notify()
		s.mu.Unlock()

		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug("read failed", slog.Any("error", err))
			}
			return
		}
	}
}

func (s *Stream) Readable(ctx context.Context) error {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 || s.readErr != nil || s.closed {
			s.mu.Unlock()
			return nil
		}
		ch := s.changed.wait()
		s.mu.Unlock()

		if err := await(ctx, ch); err != nil {
			return err
		}
	}
}

// Writable reports readiness immediately; the wrapped stream blocks (or times
// out) inside TryWrite instead.
func (s *Stream) Writable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Stream) TryRead(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if len(s.buf) == 0 {
		if s.readErr != nil {
			return 0, s.readErr
		}
		return 0, ErrWouldBlock
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	s.changed.notify()
	return n, nil
}

func (s *Stream) TryWrite(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, ErrClosed
	}

	if wd, ok := s.rwc.(writeDeadliner); ok && s.opts.WriteTimeout > 0 {
		// files without poller support report ErrNoDeadline and block instead
		if err := wd.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil && !errors.Is(err, os.ErrNoDeadline) {
			return 0, err
		}
	}

	n, err := s.rwc.Write(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		if n > 0 {
			return n, nil
		}
		return 0, ErrWouldBlock
	}
	return n, err
}

// Close closes the wrapped stream and waits for the reader goroutine.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.changed.notify()
	s.mu.Unlock()

	err := s.rwc.Close()
	<-s.done
	s.log.Debug("closed")
	return err
}

var _ Transport = (*Stream)(nil)
