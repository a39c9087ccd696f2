package pipe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/codewandler/soundpad-go/core/transport"
)

type (
	writeStep struct {
		max int // bytes to accept; <0 accepts everything
		err error
	}
	readStep struct {
		data []byte
		err  error
	}

	// scriptedTransport replays a fixed sequence of attempt results.
	scriptedTransport struct {
		mu            sync.Mutex
		written       bytes.Buffer
		writes        []writeStep
		writeAttempts int
		reads         []readStep
		readAttempts  int
	}
)

func (s *scriptedTransport) Writable(ctx context.Context) error { return ctx.Err() }

func (s *scriptedTransport) Readable(ctx context.Context) error {
	s.mu.Lock()
	pending := len(s.reads) > 0
	s.mu.Unlock()
	if pending {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *scriptedTransport) TryWrite(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeAttempts++

	n := len(p)
	if len(s.writes) > 0 {
		step := s.writes[0]
		s.writes = s.writes[1:]
		if step.err != nil {
			return 0, step.err
		}
		if step.max >= 0 {
			n = min(n, step.max)
		}
	}
	s.written.Write(p[:n])
	return n, nil
}

func (s *scriptedTransport) TryRead(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readAttempts++

	if len(s.reads) == 0 {
		return 0, transport.ErrWouldBlock
	}
	step := s.reads[0]
	s.reads = s.reads[1:]
	if step.err != nil {
		return 0, step.err
	}
	if len(step.data) > len(p) {
		panic("read step larger than chunk")
	}
	return copy(p, step.data), nil
}

var _ transport.Transport = (*scriptedTransport)(nil)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func newScripted(t *testing.T, st *scriptedTransport, opts Options) *Connection {
	t.Helper()
	opts.Logger = testLogger()
	c, tx := New(st, opts)
	tx.Close()
	return c
}

// startEcho serves newline-terminated requests on peer, replying with
// reply(line). It stops when the peer end is closed.
func startEcho(t *testing.T, peer *transport.Memory, reply func(line string) string) {
	t.Helper()
	ctx := t.Context()

	go func() {
		var pending []byte
		buf := make([]byte, 64)
		for {
			if err := peer.Readable(ctx); err != nil {
				return
			}
			n, err := peer.TryRead(buf)
			if errors.Is(err, transport.ErrWouldBlock) {
				continue
			}
			if err != nil {
				return
			}
			pending = append(pending, buf[:n]...)

			for {
				i := bytes.IndexByte(pending, '\n')
				if i < 0 {
					break
				}
				line := string(pending[:i])
				pending = pending[i+1:]
				if err := transport.WriteAll(ctx, peer, []byte(reply(line))); err != nil {
					return
				}
			}
		}
	}()
}

func readAll(ctx context.Context, peer *transport.Memory) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 64)
	for {
		if err := peer.Readable(ctx); err != nil {
			return sb.String(), err
		}
		n, err := peer.TryRead(buf)
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if errors.Is(err, transport.ErrWouldBlock) {
			continue
		}
		if err != nil {
			return sb.String(), err
		}
		sb.Write(buf[:n])
	}
}
