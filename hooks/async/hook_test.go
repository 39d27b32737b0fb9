package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/ledgercache"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	ledgercache.NopHooks
	mu     sync.Mutex
	stores []string
	aborts int
}

func (r *recorder) BackendStore(k string, _ int) {
	r.mu.Lock()
	r.stores = append(r.stores, k)
	r.mu.Unlock()
}

func (r *recorder) CallAborted(error) {
	r.mu.Lock()
	r.aborts++
	r.mu.Unlock()
}

func TestForwardsAndDrainsOnClose(t *testing.T) {
	rec := &recorder{}
	h := New(rec, 1, 16)
	h.BackendStore("a", 1)
	h.BackendStore("b", 1)
	h.CallAborted(errors.New("x"))
	h.Close()

	if len(rec.stores) != 2 || rec.stores[0] != "a" || rec.stores[1] != "b" {
		t.Fatalf("stores: %v", rec.stores)
	}
	if rec.aborts != 1 {
		t.Fatalf("aborts: %d", rec.aborts)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped: %d", h.Dropped())
	}
}

type blocking struct {
	ledgercache.NopHooks
	release chan struct{}
	started chan struct{}
}

func (b *blocking) BackendRemove(string) {
	b.started <- struct{}{}
	<-b.release
}

func TestDropsWhenFull(t *testing.T) {
	b := &blocking{release: make(chan struct{}), started: make(chan struct{}, 1)}
	h := New(b, 1, 1)

	h.BackendRemove("busy") // taken by the worker
	<-b.started
	h.BackendRemove("queued")
	h.BackendRemove("dropped")
	if h.Dropped() != 1 {
		t.Fatalf("dropped: %d", h.Dropped())
	}

	close(b.release)
	h.Close()
	h.BackendRemove("late")
	if h.Dropped() != 2 {
		t.Fatalf("dropped after close: %d", h.Dropped())
	}
}
