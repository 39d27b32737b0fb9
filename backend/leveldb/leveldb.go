// Package leveldb is a durable Backend on top of syndtr/goleveldb.
package leveldb

import (
	"context"
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/unkn0wn-root/ledgercache/backend"
)

type Backend struct {
	db *leveldb.DB
	wo *opt.WriteOptions
}

var (
	_ backend.Backend = (*Backend)(nil)
	_ backend.Batcher = (*Backend)(nil)
)

type Config struct {
	// Path of the database directory. Empty opens an in-memory database.
	Path string
	// Sync forces an fsync on every write and batch commit.
	Sync bool
	// ReadOnly opens the database without write access.
	ReadOnly bool
}

func Open(cfg Config) (*Backend, error) {
	o := &opt.Options{ReadOnly: cfg.ReadOnly}
	var (
		db  *leveldb.DB
		err error
	)
	if cfg.Path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), o)
	} else {
		db, err = leveldb.OpenFile(cfg.Path, o)
	}
	if err != nil {
		return nil, err
	}
	return &Backend{db: db, wo: &opt.WriteOptions{Sync: cfg.Sync}}, nil
}

func (b *Backend) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	v, err := b.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *Backend) Set(_ context.Context, key, value []byte) error {
	return b.db.Put(key, value, b.wo)
}

func (b *Backend) Del(_ context.Context, key []byte) error {
	return b.db.Delete(key, b.wo)
}

func (b *Backend) NewBatch() backend.Batch {
	return &batch{b: b, lb: new(leveldb.Batch)}
}

func (b *Backend) Close(_ context.Context) error {
	err := b.db.Close()
	if errors.Is(err, leveldb.ErrClosed) {
		return nil
	}
	return err
}

type batch struct {
	b  *Backend
	lb *leveldb.Batch
}

func (t *batch) Set(key, value []byte) { t.lb.Put(key, value) }
func (t *batch) Del(key []byte)        { t.lb.Delete(key) }
func (t *batch) Len() int              { return t.lb.Len() }
func (t *batch) Discard()              { t.lb.Reset() }

func (t *batch) Commit(_ context.Context) error {
	if t.lb.Len() == 0 {
		return nil
	}
	err := t.b.db.Write(t.lb, t.b.wo)
	t.lb.Reset()
	return err
}
