package codec

import (
	"errors"
	"fmt"
)

// ErrTooLarge is returned by LimitCodec for payloads over its limits.
var ErrTooLarge = errors.New("codec: payload too large")

// LimitCodec wraps another codec and bounds payload sizes. A limit <= 0 is
// disabled.
//
// MaxDecode refuses to decode oversized slots written by a foreign schema
// sharing the same ledger. MaxEncode keeps oversized values from ever being
// flushed; the resulting encode error aborts the call.
type LimitCodec[V any] struct {
	// Inner is the underlying codec being wrapped. It must be set.
	Inner     Codec[V]
	MaxDecode int
	MaxEncode int
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.MaxEncode > 0 && len(b) > c.MaxEncode {
		return nil, fmt.Errorf("%w: encoded %d > %d", ErrTooLarge, len(b), c.MaxEncode)
	}
	return b, nil
}

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: stored %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
