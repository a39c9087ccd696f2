// Package client wires a transport, a pipe.Connection and its actor loop
// into a ready-to-use Soundpad remote control client.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/codewandler/soundpad-go/core/cache"
	"github.com/codewandler/soundpad-go/core/catalog"
	"github.com/codewandler/soundpad-go/core/pipe"
	"github.com/codewandler/soundpad-go/core/sf"
	"github.com/codewandler/soundpad-go/core/transport"
	"github.com/codewandler/soundpad-go/ports/kv"
)

const (
	DefaultCatalogQuery = "GetSoundlist()"
	DefaultCatalogKey   = "catalog"
)

type Options struct {
	ID        string
	Logger    *slog.Logger
	Metrics   pipe.Metrics
	OnPanic   pipe.OnPanic
	QueueSize int
	ChunkSize int
	Debounce  time.Duration

	// Store keeps the last catalog snapshot. Defaults to an in-memory store.
	Store      kv.Store
	CatalogKey string
	// CatalogCache holds parsed catalogs by fingerprint (default LRU of 4).
	CatalogCache cache.Cache[*catalog.SoundList]
}

type Client struct {
	log        *slog.Logger
	t          transport.Transport
	conn       *pipe.Connection
	sender     *pipe.Sender
	store      kv.Store
	catalogKey string
	catalogs   cache.Cache[*catalog.SoundList]
	flight     sf.Group[*Snapshot]

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	runErr    error
	closeOnce sync.Once
}

// New takes ownership of t and starts the actor loop. If t is an io.Closer it
// is closed once the actor stopped.
func New(t transport.Transport, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Store == nil {
		opts.Store = kv.NewMemStore()
	}
	if opts.CatalogKey == "" {
		opts.CatalogKey = DefaultCatalogKey
	}
	if opts.CatalogCache == nil {
		opts.CatalogCache = cache.NewLRU[*catalog.SoundList](cache.LRUOpts{Size: 4})
	}

	ctx, cancel := context.WithCancel(context.Background())
	conn, sender := pipe.New(t, pipe.Options{
		ID:        opts.ID,
		Context:   ctx,
		Logger:    opts.Logger,
		QueueSize: opts.QueueSize,
		ChunkSize: opts.ChunkSize,
		Debounce:  opts.Debounce,
		Metrics:   opts.Metrics,
		OnPanic:   opts.OnPanic,
	})

	c := &Client{
		log:        conn.Log(),
		t:          t,
		conn:       conn,
		sender:     sender,
		store:      opts.Store,
		catalogKey: opts.CatalogKey,
		catalogs:   opts.CatalogCache,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		c.runErr = pipe.Run(conn)
	}()

	c.log.Debug("client started")
	return c
}

func (c *Client) ID() string { return c.conn.ID() }

// Sender returns a new producer handle. The caller must close it; Close
// waits for the actor only after every handle is closed.
func (c *Client) Sender() (*pipe.Sender, error) { return c.sender.Clone() }

func (c *Client) Request(ctx context.Context, payload string) (string, error) {
	return pipe.Do(ctx, c.sender, []byte(payload))
}

// Sequence sends payloads one after another inside a single command, pacing
// them by the configured debounce.
func (c *Client) Sequence(ctx context.Context, payloads ...string) ([]string, error) {
	bs := make([][]byte, len(payloads))
	for i, p := range payloads {
		bs[i] = []byte(p)
	}
	return pipe.DoSequence(ctx, c.sender, bs...)
}

// Submit enqueues an arbitrary command without waiting for it to run.
func (c *Client) Submit(ctx context.Context, cmd pipe.Command) error {
	return c.sender.Send(ctx, cmd)
}

// Close releases the client's producer handle and waits until the actor
// drained the queue. If ctx is done first, pending readiness waits are
// aborted and ctx.Err() is returned.
func (c *Client) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.sender.Close()
	})

	select {
	case <-c.done:
	case <-ctx.Done():
		// handles cloned via Sender may still be open
		c.cancel()
		return ctx.Err()
	}
	c.cancel()

	if cl, ok := c.t.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			c.log.Warn("close transport", slog.Any("error", err))
		}
	}

	if c.runErr != nil {
		return fmt.Errorf("run: %w", c.runErr)
	}
	return nil
}

// Snapshot is a parsed catalog together with its identity.
type Snapshot struct {
	List        *catalog.SoundList
	Fingerprint string
	// Changed reports whether the fingerprint differs from the stored one.
	Changed  bool
	Revision uint64
}

type storedCatalog struct {
	Fingerprint string    `json:"fingerprint"`
	FetchedAt   time.Time `json:"fetchedAt"`
	Raw         string    `json:"raw"`
}

// Catalog queries the sound list, parses it and stores the raw document when
// its fingerprint changed since the last stored snapshot. An empty query uses
// DefaultCatalogQuery. Concurrent calls for the same query share one fetch,
// which runs on the client's session context; ctx only bounds this caller's
// wait. The returned list may be shared between snapshots and must not be
// modified.
func (c *Client) Catalog(ctx context.Context, query string) (*Snapshot, error) {
	if query == "" {
		query = DefaultCatalogQuery
	}
	ch := c.flight.DoChan(query, func() (*Snapshot, error) {
		return c.fetchCatalog(c.ctx, query)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Client) fetchCatalog(ctx context.Context, query string) (*Snapshot, error) {
	raw, err := c.Request(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}

	list, fp, err := c.parseCatalog(raw)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{List: list, Fingerprint: fp}

	prev, err := c.store.Get(ctx, c.catalogKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	if err == nil {
		var stored storedCatalog
		if json.Unmarshal(prev.Data, &stored) == nil && stored.Fingerprint == snap.Fingerprint {
			snap.Revision = prev.Revision
			return snap, nil
		}
	}

	rev, err := kv.Put(ctx, c.store, c.catalogKey, storedCatalog{
		Fingerprint: snap.Fingerprint,
		FetchedAt:   time.Now().UTC(),
		Raw:         raw,
	})
	if err != nil {
		return nil, fmt.Errorf("store catalog snapshot: %w", err)
	}
	snap.Changed = true
	snap.Revision = rev

	c.log.Info(
		"catalog changed",
		slog.String("fingerprint", snap.Fingerprint),
		slog.Int("sounds", len(list.Sounds())),
		slog.Uint64("revision", rev),
	)
	return snap, nil
}

func (c *Client) parseCatalog(raw string) (*catalog.SoundList, string, error) {
	fp := catalog.Fingerprint([]byte(raw))
	if list, ok := c.catalogs.Get(fp); ok {
		return list, fp, nil
	}
	list, err := catalog.ParseString(raw)
	if err != nil {
		return nil, "", err
	}
	c.catalogs.Put(fp, list)
	return list, fp, nil
}

// StoredCatalog returns the last stored snapshot without querying the
// transport. kv.ErrNotFound is returned when none was stored yet.
func (c *Client) StoredCatalog(ctx context.Context) (*Snapshot, error) {
	entry, err := c.store.Get(ctx, c.catalogKey)
	if err != nil {
		return nil, err
	}

	var stored storedCatalog
	if err := json.Unmarshal(entry.Data, &stored); err != nil {
		return nil, fmt.Errorf("decode catalog snapshot: %w", err)
	}

	list, fp, err := c.parseCatalog(stored.Raw)
	if err != nil {
		return nil, err
	}
	return &Snapshot{List: list, Fingerprint: fp, Revision: entry.Revision}, nil
}
