// Package asynchook moves Hooks callbacks off the calling goroutine.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{LoadEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	sess, _ := ledgercache.NewSession(ctx, store, ledgercache.Options{
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/ledgercache"
)

// Hooks forwards events to inner through a bounded queue. Events that do not
// fit are dropped and counted.
type Hooks struct {
	inner   ledgercache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against sends
	closed  bool
	dropped atomic.Uint64
}

var _ ledgercache.Hooks = (*Hooks)(nil)

func New(inner ledgercache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped returns the number of events lost to a full queue or a closed hook.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) BackendLoad(k string, hit bool)   { h.try(func() { h.inner.BackendLoad(k, hit) }) }
func (h *Hooks) BackendStore(k string, n int)     { h.try(func() { h.inner.BackendStore(k, n) }) }
func (h *Hooks) BackendRemove(k string)           { h.try(func() { h.inner.BackendRemove(k) }) }
func (h *Hooks) Flushed(n int, batched bool)      { h.try(func() { h.inner.Flushed(n, batched) }) }
func (h *Hooks) DecodeFailed(k string, err error) { h.try(func() { h.inner.DecodeFailed(k, err) }) }
func (h *Hooks) CallAborted(err error)            { h.try(func() { h.inner.CallAborted(err) }) }
