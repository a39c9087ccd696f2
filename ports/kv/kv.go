// Package kv is the storage port for catalog snapshots. The client writes
// through it; adapters (in-memory, NATS JetStream) implement it.
package kv

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)

type Entry struct {
	Data []byte
	// Revision increases with every Put of the same key.
	Revision uint64
}

type Store interface {
	Put(ctx context.Context, key string, data []byte) (revision uint64, err error)
	Get(ctx context.Context, key string) (entry Entry, err error)
	Delete(ctx context.Context, key string) error
}

func Put[T any](ctx context.Context, store Store, key string, v T) (uint64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return store.Put(ctx, key, data)
}

func Get[T any](ctx context.Context, store Store, key string) (out T, err error) {
	entry, err := store.Get(ctx, key)
	if err != nil {
		return
	}
	err = json.Unmarshal(entry.Data, &out)
	return
}
