// Package bigcache adapts allegro/bigcache as a Backend. Entries are subject to
// the configured LifeWindow, so this store suits scratch ledgers and tests, not
// durable state.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/ledgercache/backend"
)

type Backend struct {
	c *bc.BigCache
}

var _ backend.Backend = (*Backend)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(ctx context.Context, cfg Config) (*Backend, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	conf.Verbose = false
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

func (b *Backend) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	v, err := b.c.Get(string(key))
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *Backend) Set(_ context.Context, key, value []byte) error {
	return b.c.Set(string(key), value)
}

func (b *Backend) Del(_ context.Context, key []byte) error {
	err := b.c.Delete(string(key))
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (b *Backend) Close(_ context.Context) error {
	return b.c.Close()
}
