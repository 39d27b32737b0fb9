// Package pebble is a durable Backend on top of cockroachdb/pebble.
package pebble

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/unkn0wn-root/ledgercache/backend"
)

type Backend struct {
	db *pebble.DB
	wo *pebble.WriteOptions
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Batcher = (*Backend)(nil)
)

type Config struct {
	// Path of the database directory. Empty opens an in-memory filesystem.
	Path string
	// Sync forces an fsync on every write and batch commit.
	Sync bool
}

func Open(cfg Config) (*Backend, error) {
	o := &pebble.Options{}
	dir := cfg.Path
	if dir == "" {
		o.FS = vfs.NewMem()
		dir = "ledger"
	}
	db, err := pebble.Open(dir, o)
	if err != nil {
		return nil, err
	}
	wo := pebble.NoSync
	if cfg.Sync {
		wo = pebble.Sync
	}
	return &Backend{db: db, wo: wo}, nil
}

func (b *Backend) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	v, closer, err := b.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// v is only valid until closer is closed
	out := append([]byte(nil), v...)
	if err := closer.Close(); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (b *Backend) Set(_ context.Context, key, value []byte) error {
	return b.db.Set(key, value, b.wo)
}

func (b *Backend) Del(_ context.Context, key []byte) error {
	return b.db.Delete(key, b.wo)
}

func (b *Backend) NewBatch() backend.Batch {
	return &batch{b: b, pb: b.db.NewBatch()}
}

func (b *Backend) Close(_ context.Context) error {
	return b.db.Close()
}

type batch struct {
	b   *Backend
	pb  *pebble.Batch
	n   int
	err error // first failed Set/Del, returned by Commit
}

func (t *batch) Set(key, value []byte) {
	if err := t.pb.Set(key, value, nil); err != nil && t.err == nil {
		t.err = err
	}
	t.n++
}

func (t *batch) Del(key []byte) {
	if err := t.pb.Delete(key, nil); err != nil && t.err == nil {
		t.err = err
	}
	t.n++
}

func (t *batch) Len() int { return t.n }

func (t *batch) Commit(_ context.Context) error {
	defer t.Discard()
	if t.err != nil {
		return t.err
	}
	if t.n == 0 {
		return nil
	}
	return t.pb.Commit(t.b.wo)
}

// Discard closes the underlying pebble batch. Safe to call more than once.
func (t *batch) Discard() {
	if t.pb == nil {
		return
	}
	_ = t.pb.Close()
	t.pb = nil
}
