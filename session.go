package ledgercache

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/ledgercache/backend"
	"github.com/unkn0wn-root/ledgercache/codec"
)

// Options tune a Session. Only the backend passed to NewSession is required.
type Options struct {
	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	// View marks an immutable call. Any write attempt panics with
	// ErrWriteInView and nothing is ever flushed.
	View bool
}

// Stats counts backend traffic of one session.
type Stats struct {
	Loads   int // backend reads, hits and misses
	Hits    int
	Stores  int // values written, directly or through a batch
	Removes int // eager deletes
	Commits int
}

// Session is the state of one contract invocation. Every cell and collection
// is bound to exactly one session and must not outlive it.
//
// A Session is not safe for concurrent use.
type Session struct {
	ctx   context.Context
	be    backend.Backend
	log   Logger
	hooks Hooks
	view  bool

	batch backend.Batch // set while Commit runs
	stats Stats
}

// NewSession binds a new invocation to store. ctx is used for every backend
// round trip made on behalf of the call.
func NewSession(ctx context.Context, store backend.Backend, opts Options) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("ledgercache: backend is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Session{
		ctx:   ctx,
		be:    store,
		log:   WithFields(coalesce[Logger](opts.Logger, NopLogger{}), Fields{"view": opts.View}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
		view:  opts.View,
	}, nil
}

func (s *Session) Context() context.Context { return s.ctx }
func (s *Session) Backend() backend.Backend { return s.be }
func (s *Session) View() bool               { return s.view }
func (s *Session) Stats() Stats             { return s.stats }
func (s *Session) Logger() Logger           { return s.log }

// Commit flushes f into a batch and applies it once f.Flush returns. A
// Batcher backend supplies the batch; any other backend is written through
// backend.Staged, which restores touched keys if a write fails. A panic raised
// while flushing discards the batch and is returned as *AbortError.
func (s *Session) Commit(f Flusher) (err error) {
	if s.view {
		return &AbortError{Err: fmt.Errorf("%w: commit", ErrWriteInView)}
	}
	if err := s.ctx.Err(); err != nil {
		return s.abortErr(err)
	}

	before := s.stats.Stores
	b, native := s.be.(backend.Batcher)
	if native {
		s.batch = b.NewBatch()
	} else {
		s.batch = backend.Staged(s.be)
	}
	defer func() {
		if s.batch != nil {
			s.batch.Discard()
			s.batch = nil
		}
		if r := recover(); r != nil {
			err = s.abortErr(asError(r))
		}
	}()

	f.Flush()

	batch := s.batch
	s.batch = nil
	if err := batch.Commit(s.ctx); err != nil {
		return s.abortErr(&BackendError{Op: "commit", Err: err})
	}
	s.stats.Commits++
	written := s.stats.Stores - before
	s.hooks.Flushed(written, native)
	s.log.Debug("committed", Fields{"written": written, "batched": native})
	return nil
}

func (s *Session) abortErr(err error) error {
	s.hooks.CallAborted(err)
	s.log.Warn("call aborted", Fields{"err": err})
	return &AbortError{Err: err}
}

// guardWrite panics when a view call tries to mutate state.
func (s *Session) guardWrite(op string, key []byte) {
	if s.view {
		panic(fmt.Errorf("%w: %s %q", ErrWriteInView, op, key))
	}
}

func (s *Session) fatal(err error) {
	s.log.Error("fatal", Fields{"err": err})
	panic(err)
}

func (s *Session) load(key []byte) ([]byte, bool) {
	raw, ok, err := s.be.Get(s.ctx, key)
	if err != nil {
		s.fatal(&BackendError{Op: "get", Key: clone(key), Err: err})
	}
	s.stats.Loads++
	if ok {
		s.stats.Hits++
	}
	s.hooks.BackendLoad(string(key), ok)
	return raw, ok
}

func (s *Session) store(key, val []byte) {
	s.guardWrite("set", key)
	if s.batch != nil {
		s.batch.Set(key, val)
	} else if err := s.be.Set(s.ctx, key, val); err != nil {
		s.fatal(&BackendError{Op: "set", Key: clone(key), Err: err})
	}
	s.stats.Stores++
	s.hooks.BackendStore(string(key), len(val))
}

func (s *Session) remove(key []byte) {
	s.guardWrite("del", key)
	if s.batch != nil {
		s.batch.Del(key)
	} else if err := s.be.Del(s.ctx, key); err != nil {
		s.fatal(&BackendError{Op: "del", Key: clone(key), Err: err})
	}
	s.stats.Removes++
	s.hooks.BackendRemove(string(key))
}

// loadValue reads and decodes key. A miss is nil; present bytes that fail to
// decode are fatal.
func loadValue[T any](s *Session, c codec.Codec[T], key []byte) *T {
	raw, ok := s.load(key)
	if !ok {
		return nil
	}
	v, err := c.Decode(raw)
	if err != nil {
		s.hooks.DecodeFailed(string(key), err)
		s.fatal(&DecodeError{Key: clone(key), Err: err})
	}
	return &v
}

func storeValue[T any](s *Session, c codec.Codec[T], key []byte, v T) {
	raw, err := c.Encode(v)
	if err != nil {
		s.fatal(&EncodeError{Key: clone(key), Err: err})
	}
	s.store(key, raw)
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

// coalesce returns def when v is the zero value of T.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
