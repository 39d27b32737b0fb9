package ledgercache

import (
	"errors"
	"fmt"
)

// Fatal conditions. They are raised as panics and surface from Call and
// Session.Commit wrapped in an *AbortError.
var (
	ErrDesync          = errors.New("ledgercache: read of unsynced slot")
	ErrUninitialized   = errors.New("ledgercache: length counter not initialized")
	ErrLengthOverflow  = errors.New("ledgercache: length counter overflow")
	ErrIndexOutOfRange = errors.New("ledgercache: index out of range")
	ErrKeyNotFound     = errors.New("ledgercache: key not found")
	ErrWriteInView     = errors.New("ledgercache: write attempted in view call")
)

// BackendError reports a failed backend operation.
type BackendError struct {
	Op  string // "get", "set", "del" or "commit"
	Key []byte
	Err error
}

func (e *BackendError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("ledgercache: backend %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ledgercache: backend %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// DecodeError reports present bytes that the slot's codec rejected.
type DecodeError struct {
	Key []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ledgercache: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a value or mapping key the codec could not encode.
type EncodeError struct {
	Key []byte
	Err error
}

func (e *EncodeError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("ledgercache: encode: %v", e.Err)
	}
	return fmt.Sprintf("ledgercache: encode %q: %v", e.Key, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// AbortError is returned when a call was aborted. No value cached during the
// call was flushed.
type AbortError struct {
	Err error
}

func (e *AbortError) Error() string { return "ledgercache: call aborted: " + e.Err.Error() }

func (e *AbortError) Unwrap() error { return e.Err }

// asError converts a recovered panic value to an error.
func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
