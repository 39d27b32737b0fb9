// Package ledgercache is the write-back state cache that contract calls use to
// read and mutate durable key-value state.
//
// Every logical field of a contract's storage is bound to one or more keys of
// a flat byte-keyed backend. Values are loaded lazily on first touch, cached
// and mutated in memory, and written back once when a mutating call succeeds.
//
// Components:
//   - Session: one contract invocation. Owns the backend handle, the call's
//     context, logger, hooks and the view/mutating flag.
//   - TypedCell / CachedCell: one value under one key.
//   - TypedChunk / CachedChunk: a family of values under prefix|'$'|suffix.
//   - Vec, Mapping, IterableMapping: collections with an incremental length
//     counter stored at the bare prefix.
//
// Keys:
//
//	cell:        <prefix>
//	vec element: <prefix>$<u32 little-endian index>
//	map entry:   <prefix>$<encoded key>
//
// Call pattern:
//
//	sess, _ := ledgercache.NewSession(ctx, store, ledgercache.Options{})
//	err := ledgercache.Call(sess, []byte("token"), bindToken, func(t *Token) error {
//	    t.Supply.MutateWith(func(s *uint64) { *s += amount }) // in memory only
//	    return nil
//	}) // flushed here iff fn returned nil and nothing panicked
package ledgercache
