// Package sloghooks reports session events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/ledgercache"
)

type Options struct {
	// Sampling for high-volume events; 0/1 = log all.
	LoadEvery  uint64
	StoreEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix. Storage keys embed
	// contract keys, which may be account identifiers.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	loadCtr  atomic.Uint64
	storeCtr atomic.Uint64
}

var _ ledgercache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) BackendLoad(key string, hit bool) {
	if h.l == nil || !sample(h.opts.LoadEvery, &h.loadCtr) {
		return
	}
	h.l.Debug("ledgercache.load",
		"key", h.redact(key),
		"hit", hit)
}

func (h *Hooks) BackendStore(key string, size int) {
	if h.l == nil || !sample(h.opts.StoreEvery, &h.storeCtr) {
		return
	}
	h.l.Debug("ledgercache.store",
		"key", h.redact(key),
		"size", size)
}

func (h *Hooks) BackendRemove(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("ledgercache.remove",
		"key", h.redact(key))
}

func (h *Hooks) Flushed(written int, batched bool) {
	if h.l == nil {
		return
	}
	h.l.Info("ledgercache.flushed",
		"written", written,
		"batched", batched)
}

func (h *Hooks) DecodeFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("ledgercache.decode_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) CallAborted(err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("ledgercache.call_aborted",
		"err", err)
}
