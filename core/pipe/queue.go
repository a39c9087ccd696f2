package pipe

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// queue is the multi-producer, single-consumer mailbox behind a Connection.
// The channel is closed once the last Sender is closed and every enqueue that
// was already admitted has landed.
type queue struct {
	ch chan Command

	mu       sync.Mutex
	refs     int
	closed   bool
	inflight sync.WaitGroup
}

func newQueue(size int) (*queue, *Sender) {
	q := &queue{
		ch:   make(chan Command, size),
		refs: 1,
	}
	return q, &Sender{q: q}
}

func (q *queue) admit() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.inflight.Add(1)
	return nil
}

func (q *queue) release() {
	q.mu.Lock()
	q.refs--
	last := q.refs == 0
	if last {
		q.closed = true
	}
	q.mu.Unlock()

	if last {
		// pending enqueues may still be waiting for the consumer
		go func() {
			q.inflight.Wait()
			close(q.ch)
		}()
	}
}

// Sender is a producer handle for a Connection's command queue. Handles are
// cheap to Clone; the queue closes when every handle has been closed, which
// makes Run return after draining what was already queued.
type Sender struct {
	q      *queue
	closed atomic.Bool
}

// Send enqueues cmd, blocking while the queue is full. ctx bounds only the
// wait for a free slot; once enqueued the command runs on the session context.
func (s *Sender) Send(ctx context.Context, cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if s.closed.Load() {
		return ErrSenderClosed
	}
	if err := s.q.admit(); err != nil {
		return err
	}
	defer s.q.inflight.Done()

	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue failed: %w", ctx.Err())
	case s.q.ch <- cmd:
		return nil
	}
}

// TrySend enqueues cmd without blocking.
func (s *Sender) TrySend(cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if s.closed.Load() {
		return ErrSenderClosed
	}
	if err := s.q.admit(); err != nil {
		return err
	}
	defer s.q.inflight.Done()

	select {
	case s.q.ch <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Clone returns an independent handle to the same queue.
func (s *Sender) Clone() (*Sender, error) {
	if s.closed.Load() {
		return nil, ErrSenderClosed
	}
	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	if s.q.closed {
		return nil, ErrQueueClosed
	}
	s.q.refs++
	return &Sender{q: s.q}, nil
}

// Len reports the number of queued commands.
func (s *Sender) Len() int { return len(s.q.ch) }

// Close releases this handle. It is idempotent.
func (s *Sender) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.q.release()
}
