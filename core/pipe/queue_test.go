package pipe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/soundpad-go/core/transport"
)

func noop() Command {
	return CommandFunc(func(context.Context, *Connection) error { return nil })
}

func TestSender_full_queue(t *testing.T) {
	a, _ := transport.NewMemoryPair(transport.MemoryOptions{})
	_, tx := New(a, Options{Logger: testLogger(), QueueSize: 2})

	require.NoError(t, tx.TrySend(noop()))
	require.NoError(t, tx.TrySend(noop()))
	require.Equal(t, 2, tx.Len())
	require.ErrorIs(t, tx.TrySend(noop()), ErrQueueFull)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, tx.Send(ctx, noop()), context.DeadlineExceeded)
}

func TestSender_closed(t *testing.T) {
	a, _ := transport.NewMemoryPair(transport.MemoryOptions{})
	_, tx := New(a, Options{Logger: testLogger()})

	tx.Close()
	require.ErrorIs(t, tx.Send(t.Context(), noop()), ErrSenderClosed)
	require.ErrorIs(t, tx.TrySend(noop()), ErrSenderClosed)

	_, err := tx.Clone()
	require.ErrorIs(t, err, ErrSenderClosed)
}

func TestSender_nil_command(t *testing.T) {
	a, _ := transport.NewMemoryPair(transport.MemoryOptions{})
	_, tx := New(a, Options{Logger: testLogger()})
	defer tx.Close()

	require.ErrorIs(t, tx.Send(t.Context(), nil), ErrNilCommand)
	require.ErrorIs(t, tx.TrySend(nil), ErrNilCommand)
}

func TestSender_many_producers(t *testing.T) {
	a, _ := transport.NewMemoryPair(transport.MemoryOptions{})
	c, tx := New(a, Options{Logger: testLogger(), QueueSize: 4})
	done := startRun(t, c)

	const producers, perProducer = 8, 25
	counts := make(map[int]int)
	order := make(map[int][]int)

	for p := 0; p < producers; p++ {
		ptx, err := tx.Clone()
		require.NoError(t, err)
		go func(p int) {
			defer ptx.Close()
			for i := 0; i < perProducer; i++ {
				// commands run on the actor goroutine only, so the maps
				// need no lock
				_ = ptx.Send(context.Background(), CommandFunc(func(context.Context, *Connection) error {
					counts[p]++
					order[p] = append(order[p], i)
					return nil
				}))
			}
		}(p)
	}
	tx.Close()

	waitDone(t, done)
	for p := 0; p < producers; p++ {
		require.Equal(t, perProducer, counts[p])
		for i, v := range order[p] {
			require.Equal(t, i, v, "producer %d out of order", p)
		}
	}
}
