package pipe

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/soundpad-go/core/transport"
)

func newEchoConnection(t *testing.T, opts Options) *Sender {
	t.Helper()
	a, b := transport.NewMemoryPair(transport.MemoryOptions{})
	startEcho(t, b, func(line string) string { return "R:" + line })

	opts.Logger = testLogger()
	c, tx := New(a, opts)
	done := startRun(t, c)
	t.Cleanup(func() {
		tx.Close()
		waitDone(t, done)
	})

	cl, err := tx.Clone()
	require.NoError(t, err)
	t.Cleanup(cl.Close)
	return cl
}

func TestDo(t *testing.T) {
	tx := newEchoConnection(t, Options{})

	text, err := Do(t.Context(), tx, []byte("GetVersion()\n"))
	require.NoError(t, err)
	require.Equal(t, "R:GetVersion()", text)
}

func TestDo_closed_sender(t *testing.T) {
	tx := newEchoConnection(t, Options{})
	tx.Close()

	_, err := Do(t.Context(), tx, []byte("GetVersion()\n"))
	require.ErrorIs(t, err, ErrSenderClosed)
}

func TestDoSequence_debounce(t *testing.T) {
	const debounce = 30 * time.Millisecond
	tx := newEchoConnection(t, Options{Debounce: debounce})

	start := time.Now()
	out, err := DoSequence(t.Context(), tx, []byte("a\n"), []byte("b\n"), []byte("c\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"R:a", "R:b", "R:c"}, out)
	require.GreaterOrEqual(t, time.Since(start), 2*debounce)
}

func TestSequence_partial_failure(t *testing.T) {
	boom := errors.New("pipe closed")
	st := &scriptedTransport{
		reads: []readStep{{data: []byte("first")}, {err: boom}},
	}
	c := newScripted(t, st, Options{})

	seq := NewSequence([]byte("one"), []byte("two"), []byte("three"))
	err := seq.Do(t.Context(), c)
	require.ErrorIs(t, err, boom)

	res := <-seq.Result()
	require.ErrorIs(t, res.Err, boom)
	require.Equal(t, []string{"first"}, res.Responses)
	require.Equal(t, "onetwo", st.written.String())
}

func TestRequest_runs_once(t *testing.T) {
	st := &scriptedTransport{
		reads: []readStep{{data: []byte("x")}, {data: []byte("y")}},
	}
	c := newScripted(t, st, Options{})

	req := NewRequest([]byte("ping"))
	require.NoError(t, req.Do(t.Context(), c))
	// a second run must not block on the full result channel
	require.NoError(t, req.Do(t.Context(), c))

	res := <-req.Result()
	require.Equal(t, "x", res.Text)
}

func TestCommandName(t *testing.T) {
	require.Equal(t, "request", commandName(NewRequest(nil)))
	require.Equal(t, "sequence", commandName(NewSequence()))
	require.Equal(t, "pipe.CommandFunc", commandName(CommandFunc(nil)))
}
