package codec

import (
	"bytes"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is a Codec that serializes values using vmihailenco/msgpack/v5.
// The zero value is ready to use.
//
// Output is canonical: the value is encoded once, decoded into generic form
// and re-encoded with every map sorted by the encoded bytes of its keys and
// integers in their smallest form. Equal values therefore encode to equal
// bytes, so Msgpack is safe as a Mapping key codec. Extension types without a
// generic decoding are rejected.
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	first, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := msgpack.NewDecoder(bytes.NewReader(first))
	dec.SetMapDecoder(func(d *msgpack.Decoder) (any, error) { return d.DecodeUntypedMap() })
	generic, err := dec.DecodeInterface()
	if err != nil {
		return nil, err
	}
	return canonicalMsgpack(generic)
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}

func canonicalMsgpack(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := writeCanonical(enc, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(enc *msgpack.Encoder, v any) error {
	switch x := v.(type) {
	case map[any]any:
		type pair struct {
			key []byte
			val any
		}
		ps := make([]pair, 0, len(x))
		for k, val := range x {
			kb, err := canonicalMsgpack(k)
			if err != nil {
				return err
			}
			ps = append(ps, pair{key: kb, val: val})
		}
		slices.SortFunc(ps, func(a, b pair) int { return bytes.Compare(a.key, b.key) })
		if err := enc.EncodeMapLen(len(ps)); err != nil {
			return err
		}
		for _, p := range ps {
			if err := enc.Encode(msgpack.RawMessage(p.key)); err != nil {
				return err
			}
			if err := writeCanonical(enc, p.val); err != nil {
				return err
			}
		}
		return nil
	case []any:
		if err := enc.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for _, e := range x {
			if err := writeCanonical(enc, e); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(x)
	}
}
