package transport

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

type MemoryOptions struct {
	// Capacity bounds the bytes buffered per direction (default 4096).
	Capacity int
	// MaxWrite caps the bytes a single TryWrite accepts. Zero means no cap.
	MaxWrite int
	Log      *slog.Logger
}

// Memory is one end of an in-process duplex pipe created by NewMemoryPair.
type Memory struct {
	log      *slog.Logger
	maxWrite int
	in       *memBuffer // peer -> us
	out      *memBuffer // us -> peer
}

type memBuffer struct {
	mu      sync.Mutex
	data    []byte
	cap     int
	closed  bool
	changed signal
}

// NewMemoryPair returns two connected endpoints. Bytes written to one are
// read from the other in order.
func NewMemoryPair(opts MemoryOptions) (*Memory, *Memory) {
	if opts.Capacity <= 0 {
		opts.Capacity = 4096
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}

	ab := &memBuffer{cap: opts.Capacity, changed: newSignal()}
	ba := &memBuffer{cap: opts.Capacity, changed: newSignal()}

	a := &Memory{
		log:      opts.Log.With(slog.String("transport", "mem"), slog.String("end", "a")),
		maxWrite: opts.MaxWrite,
		in:       ba,
		out:      ab,
	}
	b := &Memory{
		log:      opts.Log.With(slog.String("transport", "mem"), slog.String("end", "b")),
		maxWrite: opts.MaxWrite,
		in:       ab,
		out:      ba,
	}
	return a, b
}

func (m *Memory) Readable(ctx context.Context) error {
	b := m.in
	for {
		b.mu.Lock()
		if len(b.data) > 0 || b.closed {
			b.mu.Unlock()
			return nil
		}
		ch := b.changed.wait()
		b.mu.Unlock()

		if err := await(ctx, ch); err != nil {
			return err
		}
	}
}

func (m *Memory) Writable(ctx context.Context) error {
	b := m.out
	for {
		b.mu.Lock()
		if len(b.data) < b.cap || b.closed {
			b.mu.Unlock()
			return nil
		}
		ch := b.changed.wait()
		b.mu.Unlock()

		if err := await(ctx, ch); err != nil {
			return err
		}
	}
}

// TryRead returns io.EOF once the peer closed and all buffered bytes were read.
func (m *Memory) TryRead(p []byte) (int, error) {
	b := m.in
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) == 0 {
		if b.closed {
			return 0, io.EOF
		}
		return 0, ErrWouldBlock
	}

	n := copy(p, b.data)
	b.data = b.data[n:]
	b.changed.notify()
	return n, nil
}

func (m *Memory) TryWrite(p []byte) (int, error) {
	b := m.out
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	n := min(len(p), b.cap-len(b.data))
	if m.maxWrite > 0 {
		n = min(n, m.maxWrite)
	}
	if n <= 0 {
		return 0, ErrWouldBlock
	}

	b.data = append(b.data, p[:n]...)
	b.changed.notify()
	m.log.Debug("write", slog.Int("bytes", n), slog.Int("buffered", len(b.data)))
	return n, nil
}

// Close shuts down both directions. The peer can still drain bytes that were
// already written before it sees io.EOF.
func (m *Memory) Close() error {
	for _, b := range []*memBuffer{m.in, m.out} {
		b.mu.Lock()
		if !b.closed {
			b.closed = true
			b.changed.notify()
		}
		b.mu.Unlock()
	}
	m.log.Debug("closed")
	return nil
}

var _ Transport = (*Memory)(nil)
