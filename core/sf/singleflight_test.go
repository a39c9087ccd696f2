package sf

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroup_Do(t *testing.T) {
	var g Group[string]

	v, shared, err := g.Do("k", func() (string, error) { return "v", nil })
	require.NoError(t, err)
	require.False(t, shared)
	require.Equal(t, "v", v)
}

func TestGroup_Do_error(t *testing.T) {
	var g Group[*int]
	boom := errors.New("boom")

	v, _, err := g.Do("k", func() (*int, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	require.Nil(t, v)
}

func TestGroup_Do_dedup(t *testing.T) {
	var (
		g       Group[int]
		calls   atomic.Int32
		release = make(chan struct{})
		started = make(chan struct{})
	)

	const n = 5
	results := make([]int, n)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _, _ = g.Do("k", func() (int, error) {
			calls.Add(1)
			close(started)
			<-release
			return 42, nil
		})
	}()
	<-started

	for i := 1; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _, _ = g.Do("k", func() (int, error) {
				calls.Add(1)
				return -1, nil
			})
		}()
	}

	close(release)
	wg.Wait()

	// late callers may miss the flight and run their own fn
	require.Equal(t, 42, results[0])
	require.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, r := range results {
		require.Contains(t, []int{42, -1}, r)
	}
}

func TestGroup_DoChan_waiter_leaves_early(t *testing.T) {
	var g Group[string]
	release := make(chan struct{})

	first := g.DoChan("k", func() (string, error) {
		<-release
		return "v", nil
	})
	second := g.DoChan("k", func() (string, error) {
		return "unexpected", nil
	})

	// nobody reads first; the shared call still completes for second
	_ = first
	close(release)

	res := <-second
	require.NoError(t, res.Err)
	require.Equal(t, "v", res.Val)
	require.True(t, res.Shared)
}
