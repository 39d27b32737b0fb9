package ledgercache

// Hooks lightweight callbacks for backend traffic and call outcomes.
// Implementations MUST be cheap and non-blocking.
// Keys are passed as strings so implementations may retain them.
type Hooks interface {
	// A backend read happened; hit is false on a miss.
	BackendLoad(key string, hit bool)

	// A dirty value was written (or queued into a flush batch).
	BackendStore(key string, size int)

	// An eager delete was issued.
	BackendRemove(key string)

	// A commit finished. written is the number of values stored.
	Flushed(written int, batched bool)

	// Present bytes failed to decode (schema mismatch or corrupted ledger).
	DecodeFailed(key string, err error)

	// A call was aborted by a panic, a failed write guard or a backend error.
	CallAborted(err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) BackendLoad(string, bool)   {}
func (NopHooks) BackendStore(string, int)   {}
func (NopHooks) BackendRemove(string)       {}
func (NopHooks) Flushed(int, bool)          {}
func (NopHooks) DecodeFailed(string, error) {}
func (NopHooks) CallAborted(error)          {}
