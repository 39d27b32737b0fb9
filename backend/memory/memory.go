// Package memory is an in-process Backend. It is the default store for tests
// and for tooling that does not need durability.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/unkn0wn-root/ledgercache/backend"
)

type Store struct {
	mu     sync.RWMutex
	m      map[string][]byte
	closed bool
}

var (
	_ backend.Backend = (*Store)(nil)
	_ backend.Batcher = (*Store)(nil)
)

func New() *Store { return &Store{m: make(map[string][]byte)} }

func (s *Store) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, backend.ErrClosed
	}
	v, ok := s.m[string(key)]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (s *Store) Set(_ context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return backend.ErrClosed
	}
	s.m[string(key)] = bytes.Clone(value)
	return nil
}

func (s *Store) Del(_ context.Context, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return backend.ErrClosed
	}
	delete(s.m, string(key))
	return nil
}

func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Keys returns every stored key in ascending byte order.
func (s *Store) Keys() [][]byte {
	s.mu.RLock()
	out := make([][]byte, 0, len(s.m))
	for k := range s.m {
		out = append(out, []byte(k))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}

func (s *Store) NewBatch() backend.Batch { return &batch{s: s} }

type op struct {
	key   string
	value []byte
	del   bool
}

type batch struct {
	s   *Store
	ops []op
}

func (b *batch) Set(key, value []byte) {
	b.ops = append(b.ops, op{key: string(key), value: bytes.Clone(value)})
}

func (b *batch) Del(key []byte) { b.ops = append(b.ops, op{key: string(key), del: true}) }

func (b *batch) Len() int { return len(b.ops) }

func (b *batch) Discard() { b.ops = nil }

// Commit applies all buffered operations under one lock.
func (b *batch) Commit(_ context.Context) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.closed {
		return backend.ErrClosed
	}
	for _, o := range b.ops {
		if o.del {
			delete(b.s.m, o.key)
			continue
		}
		b.s.m[o.key] = o.value
	}
	b.ops = nil
	return nil
}
