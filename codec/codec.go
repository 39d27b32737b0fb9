// Package codec turns typed slot values into the bytes stored in a backend.
//
// Codecs used for Mapping keys must be deterministic: equal keys must encode
// to equal bytes, otherwise one logical key maps to several slots.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Must encodes v with c and panics on error. Handy for building fixtures.
func Must[V any](c Codec[V], v V) []byte {
	b, err := c.Encode(v)
	if err != nil {
		panic(err)
	}
	return b
}
