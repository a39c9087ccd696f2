package transport

import "context"

// signal is a broadcast edge: waiters grab the current channel under the
// owner's lock and block on it; notify closes it and installs a fresh one.
// The owner's mutex must be held for both wait() and notify().
type signal struct {
	ch chan struct{}
}

func newSignal() signal { return signal{ch: make(chan struct{})} }

func (s *signal) wait() <-chan struct{} { return s.ch }

func (s *signal) notify() {
	close(s.ch)
	s.ch = make(chan struct{})
}

// await blocks on ch or ctx.
func await(ctx context.Context, ch <-chan struct{}) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
