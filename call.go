package ledgercache

// Flusher is implemented by every cell and collection, and by storage
// aggregates built from them. Flush writes dirty values back and marks them
// clean.
type Flusher interface {
	Flush()
}

// FlushFunc adapts a function to Flusher.
type FlushFunc func()

func (f FlushFunc) Flush() { f() }

// FlushAll flushes fields in the given order. Aggregates implement Flush by
// calling it with their fields in declaration order.
func FlushAll(fields ...Flusher) {
	for _, f := range fields {
		f.Flush()
	}
}

// BindFunc constructs a storage aggregate whose fields are bound under key.
// Generated binders have this shape.
type BindFunc[S Flusher] func(sess *Session, key []byte) S

// Call runs one contract invocation: it binds the aggregate at key, runs fn,
// and flushes through sess.Commit iff fn returned nil, nothing panicked and
// the session is not a view. A panic inside bind or fn (including the fatal
// conditions of this package) is returned as *AbortError; an error returned
// by fn is passed through unchanged. In both cases nothing cached is written.
func Call[S Flusher](sess *Session, key []byte, bind BindFunc[S], fn func(S) error) (err error) {
	var storage S
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = sess.abortErr(asError(r))
			}
		}()
		storage = bind(sess, key)
		err = fn(storage)
	}()
	if err != nil || sess.view {
		return err
	}
	return sess.Commit(storage)
}
