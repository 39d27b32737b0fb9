package ledgercache

import (
	"context"
	"errors"
	"testing"

	"github.com/unkn0wn-root/ledgercache/backend"
	"github.com/unkn0wn-root/ledgercache/backend/memory"
	"github.com/unkn0wn-root/ledgercache/codec"
	"github.com/unkn0wn-root/ledgercache/internal/keys"
)

// countingBackend counts round trips. It does not implement backend.Batcher,
// so commits go through backend.Staged and every write reaches Set/Del.
type countingBackend struct {
	inner *memory.Store

	gets, sets, dels int
	setErr           error
	failSetAt        int // fail only the n-th Set (1-based); 0 disables
}

var _ backend.Backend = (*countingBackend)(nil)

func newCountingBackend() *countingBackend { return &countingBackend{inner: memory.New()} }

func (b *countingBackend) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	b.gets++
	return b.inner.Get(ctx, key)
}

func (b *countingBackend) Set(ctx context.Context, key, value []byte) error {
	b.sets++
	if b.setErr != nil {
		return b.setErr
	}
	if b.failSetAt != 0 && b.sets == b.failSetAt {
		return errors.New("write rejected")
	}
	return b.inner.Set(ctx, key, value)
}

func (b *countingBackend) Del(ctx context.Context, key []byte) error {
	b.dels++
	return b.inner.Del(ctx, key)
}

func (b *countingBackend) Close(ctx context.Context) error { return b.inner.Close(ctx) }

// raw reads key straight from the store.
func (b *countingBackend) raw(t *testing.T, key []byte) ([]byte, bool) {
	t.Helper()
	v, ok, err := b.inner.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("raw get %q: %v", key, err)
	}
	return v, ok
}

func (b *countingBackend) put(t *testing.T, key, value []byte) {
	t.Helper()
	if err := b.inner.Set(context.Background(), key, value); err != nil {
		t.Fatalf("raw set %q: %v", key, err)
	}
}

func newTestSession(t *testing.T, be backend.Backend, view bool) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), be, Options{View: view})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

// mustPanic runs f and returns the error it panicked with.
func mustPanic(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		e, ok := r.(error)
		if !ok {
			t.Fatalf("panic value is %T, want error", r)
		}
		err = e
	}()
	f()
	return nil
}

func mustPanicIs(t *testing.T, target error, f func()) {
	t.Helper()
	if err := mustPanic(t, f); !errors.Is(err, target) {
		t.Fatalf("panic %v, want %v", err, target)
	}
}

// token is a storage aggregate the way generated bindings look.
type token struct {
	supply   *CachedCell[uint64]
	holders  *Vec[string]
	balances *Mapping[string, uint64]
}

func bindToken(sess *Session, key []byte) *token {
	t := &token{
		supply:   NewCachedCell[uint64](sess, keys.Child(key, "supply"), codec.Uint64{}),
		holders:  NewVec[string](sess, keys.Child(key, "holders"), codec.String{}),
		balances: NewMapping[string, uint64](sess, keys.Child(key, "balances"), codec.String{}, codec.Uint64{}),
	}
	t.holders.Initialize()
	t.balances.Initialize()
	return t
}

func (t *token) Flush() { FlushAll(t.supply, t.holders, t.balances) }

func (t *token) mint(to string, amount uint64) {
	if !t.balances.ContainsKey(to) {
		t.holders.Push(to)
	}
	bal, _ := t.balances.Get(to)
	t.balances.Insert(to, bal+amount)
	supply, _ := t.supply.Get()
	t.supply.Set(supply + amount)
}
