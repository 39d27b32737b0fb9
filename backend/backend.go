// Package backend defines the flat byte-keyed store that ledgercache reads from
// and writes back to.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// bytes that were previously passed to Set for a key, including empty values.
// Stores without a real delete may implement Del as Set(key, nil); on such
// stores an emptied slot reads back as an empty value, not as a miss.
package backend

import (
	"context"
	"errors"
)

// ErrClosed is returned by stores that were used after Close.
var ErrClosed = errors.New("backend: closed")

// Backend is the ledger store consumed by a session.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key []byte) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value []byte) error

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key []byte) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Batcher is implemented by stores that can apply a group of writes at once.
// A session flushes through a batch when the backend offers one so that a
// failing store never observes half of a flush. Other stores are flushed
// through Staged, which can only roll back on a best-effort basis.
type Batcher interface {
	NewBatch() Batch
}

// Batch buffers writes until Commit. A batch is single use: after Commit or
// Discard it must not be used again. Set and Del copy their arguments.
type Batch interface {
	Set(key, value []byte)
	Del(key []byte)
	// Len reports the number of buffered operations.
	Len() int
	// Commit applies the buffered operations and releases the batch.
	Commit(ctx context.Context) error
	// Discard drops the buffered operations and releases the batch.
	Discard()
}
