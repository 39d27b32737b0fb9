// Package ristretto adapts dgraph-io/ristretto as a Backend. Ristretto admits
// writes probabilistically, so a Set may be dropped under pressure; use it
// for read-mostly scratch ledgers only.
package ristretto

import (
	"bytes"
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/ledgercache/backend"
)

// ErrRejected is returned when ristretto refused to admit a write.
var ErrRejected = errors.New("ristretto backend: write rejected")

type Backend struct {
	c *rc.Cache
}

var _ backend.Backend = (*Backend)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Backend, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

func (b *Backend) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	v, ok := b.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	raw, ok := v.([]byte)
	if !ok {
		// self-heal: drop unexpected entry shape
		b.c.Del(key)
		return nil, false, nil
	}
	return bytes.Clone(raw), true, nil
}

// Set stores value with cost len(value) and waits for the write buffer so a
// following Get observes it.
func (b *Backend) Set(_ context.Context, key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	if !b.c.Set(key, v, int64(len(v))+1) {
		return ErrRejected
	}
	b.c.Wait()
	return nil
}

func (b *Backend) Del(_ context.Context, key []byte) error {
	b.c.Del(key)
	return nil
}

func (b *Backend) Close(_ context.Context) error {
	b.c.Wait()
	b.c.Close()
	return nil
}

// Metrics exposes ristretto's counters; nil unless Config.Metrics was set.
func (b *Backend) Metrics() *rc.Metrics { return b.c.Metrics }
