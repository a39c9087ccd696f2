package client

import (
	"context"
	_ "embed"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/soundpad-go/core/pipe"
	"github.com/codewandler/soundpad-go/core/transport"
	"github.com/codewandler/soundpad-go/ports/kv"
)

//go:embed testdata/soundlist.xml
var soundList string

// fakeSoundpad answers the catalog query with list() and echoes everything
// else prefixed with "ok:".
func fakeSoundpad(t *testing.T, list func() string) transport.Transport {
	t.Helper()
	a, b := transport.NewMemoryPair(transport.MemoryOptions{})
	go func() {
		_ = transport.ServePeer(t.Context(), b, func(req []byte) []byte {
			if string(req) == DefaultCatalogQuery {
				return []byte(list())
			}
			return append([]byte("ok:"), req...)
		})
	}()
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	c := New(fakeSoundpad(t, func() string { return soundList }), opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	return c
}

func TestClient_Request(t *testing.T) {
	c := newTestClient(t, Options{})

	res, err := c.Request(t.Context(), "DoPlaySound(3)")
	require.NoError(t, err)
	require.Equal(t, "ok:DoPlaySound(3)", res)
}

func TestClient_Sequence(t *testing.T) {
	c := newTestClient(t, Options{Debounce: 5 * time.Millisecond})

	res, err := c.Sequence(t.Context(), "DoPlaySound(1)", "DoStopSound()")
	require.NoError(t, err)
	require.Equal(t, []string{"ok:DoPlaySound(1)", "ok:DoStopSound()"}, res)
}

func TestClient_Submit(t *testing.T) {
	c := newTestClient(t, Options{})

	got := make(chan string, 1)
	err := c.Submit(t.Context(), pipe.CommandFunc(func(ctx context.Context, conn *pipe.Connection) error {
		if err := conn.SendString(ctx, "GetPlayStatus()"); err != nil {
			return err
		}
		s, err := conn.Receive(ctx)
		got <- s
		return err
	}))
	require.NoError(t, err)

	select {
	case s := <-got:
		require.Equal(t, "ok:GetPlayStatus()", s)
	case <-time.After(time.Second):
		t.Fatal("command did not run")
	}
}

func TestClient_Close(t *testing.T) {
	c := New(fakeSoundpad(t, func() string { return soundList }), Options{Logger: slog.New(slog.DiscardHandler)})

	require.NoError(t, c.Close(t.Context()))
	require.NoError(t, c.Close(t.Context()))

	_, err := c.Request(t.Context(), "x")
	require.ErrorIs(t, err, pipe.ErrSenderClosed)
}

func TestClient_Close_waits_for_clones(t *testing.T) {
	c := New(fakeSoundpad(t, func() string { return soundList }), Options{Logger: slog.New(slog.DiscardHandler)})

	s, err := c.Sender()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, c.Close(ctx), context.DeadlineExceeded)

	s.Close()
	require.NoError(t, c.Close(t.Context()))
}

func TestClient_Catalog(t *testing.T) {
	var current atomic.Value
	current.Store(soundList)

	store := kv.NewMemStore()
	c := New(fakeSoundpad(t, func() string { return current.Load().(string) }), Options{
		Logger: slog.New(slog.DiscardHandler),
		Store:  store,
	})
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	_, err := c.StoredCatalog(t.Context())
	require.ErrorIs(t, err, kv.ErrNotFound)

	snap, err := c.Catalog(t.Context(), "")
	require.NoError(t, err)
	assert.True(t, snap.Changed)
	assert.Equal(t, uint64(1), snap.Revision)
	assert.Len(t, snap.List.Sounds(), 9)
	assert.Len(t, snap.Fingerprint, 64)

	again, err := c.Catalog(t.Context(), "")
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, uint64(1), again.Revision)
	assert.Equal(t, snap.Fingerprint, again.Fingerprint)
	assert.Same(t, snap.List, again.List, "parsed catalog is cached by fingerprint")

	current.Store(strings.Replace(soundList, `playCount="3"`, `playCount="4"`, 1))

	changed, err := c.Catalog(t.Context(), DefaultCatalogQuery)
	require.NoError(t, err)
	assert.True(t, changed.Changed)
	assert.Equal(t, uint64(2), changed.Revision)
	assert.NotEqual(t, snap.Fingerprint, changed.Fingerprint)

	stored, err := c.StoredCatalog(t.Context())
	require.NoError(t, err)
	assert.Equal(t, changed.Fingerprint, stored.Fingerprint)
	assert.Equal(t, uint64(2), stored.Revision)
	assert.Len(t, stored.List.Sounds(), 9)
}

func TestClient_Catalog_parse_error(t *testing.T) {
	c := New(fakeSoundpad(t, func() string { return "<Soundlist><Sound" }), Options{Logger: slog.New(slog.DiscardHandler)})
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	_, err := c.Catalog(t.Context(), "")
	require.Error(t, err)

	_, err = c.StoredCatalog(t.Context())
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestClient_Catalog_shared_fetch_survives_cancelled_caller(t *testing.T) {
	var (
		received = make(chan struct{})
		release  = make(chan struct{})
		once     sync.Once
	)

	c := New(fakeSoundpad(t, func() string {
		once.Do(func() {
			close(received)
			<-release
		})
		return soundList
	}), Options{Logger: slog.New(slog.DiscardHandler)})
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	ctxA, cancelA := context.WithCancel(t.Context())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Catalog(ctxA, "")
		errA <- err
	}()
	<-received

	type result struct {
		snap *Snapshot
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		snap, err := c.Catalog(context.Background(), "")
		resB <- result{snap, err}
	}()

	// let B join the fetch that is already in flight
	time.Sleep(20 * time.Millisecond)
	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	select {
	case r := <-resB:
		require.NoError(t, r.err)
		assert.Len(t, r.snap.List.Sounds(), 9)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not get the catalog")
	}
}
