package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/codewandler/soundpad-go/ports/kv"
)

type KvConfig struct {
	Connect Connector
	Bucket  string // default "soundpad_catalog"
	// MaxBytes bounds the bucket size (default 8 MiB).
	MaxBytes int64
}

// KvStore implements kv.Store on a JetStream key-value bucket.
type KvStore struct {
	kv      jetstream.KeyValue
	closeNc closeFunc
}

func NewKvStore(ctx context.Context, cfg KvConfig) (*KvStore, error) {
	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "soundpad_catalog"
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 8 << 20
	}

	nc, closeNc, err := doConnect()
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeNc()
		return nil, err
	}

	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Storage:  jetstream.FileStorage,
		MaxBytes: cfg.MaxBytes,
	})
	if err != nil {
		closeNc()
		return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
	}

	return &KvStore{kv: bucket, closeNc: closeNc}, nil
}

func (k *KvStore) Put(ctx context.Context, key string, data []byte) (uint64, error) {
	rev, err := k.kv.Put(ctx, key, data)
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}
	return rev, nil
}

func (k *KvStore) Get(ctx context.Context, key string) (kv.Entry, error) {
	v, err := k.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return kv.Entry{}, kv.ErrNotFound
		}
		return kv.Entry{}, fmt.Errorf("get %s: %w", key, err)
	}
	return kv.Entry{Data: v.Value(), Revision: v.Revision()}, nil
}

func (k *KvStore) Delete(ctx context.Context, key string) error {
	if err := k.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (k *KvStore) Close() {
	k.closeNc()
}

var _ kv.Store = (*KvStore)(nil)
