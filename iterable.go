package ledgercache

import (
	"bytes"
	"fmt"
	"iter"
	"math"

	"github.com/unkn0wn-root/ledgercache/codec"
	"github.com/unkn0wn-root/ledgercache/internal/keys"
	"github.com/unkn0wn-root/ledgercache/internal/wire"
)

// IterableMapping is a Mapping that can enumerate its keys.
//
//	<prefix>$k         Vec of encoded keys, in position order
//	<prefix>$v$<key>   indexed record: position in the key list + value
//
// For every present key k, keys[pos(k)] == encode(k), and the key list length
// is the mapping length. Remove is O(1): the last key is swapped into the
// freed position and its record's position is rewritten.
type IterableMapping[K, V any] struct {
	keys *Vec[[]byte]
	recs *CachedChunk[record[V]]
	kc   codec.Codec[K]
}

type record[V any] struct {
	pos uint32
	val V
}

// recordCodec frames a value with its position using internal/wire.
type recordCodec[V any] struct{ inner codec.Codec[V] }

func (c recordCodec[V]) Encode(r record[V]) ([]byte, error) {
	payload, err := c.inner.Encode(r.val)
	if err != nil {
		return nil, err
	}
	return wire.EncodeIndexed(r.pos, payload), nil
}

func (c recordCodec[V]) Decode(b []byte) (record[V], error) {
	pos, payload, err := wire.DecodeIndexed(b)
	if err != nil {
		return record[V]{}, err
	}
	v, err := c.inner.Decode(payload)
	if err != nil {
		return record[V]{}, err
	}
	return record[V]{pos: pos, val: v}, nil
}

func NewIterableMapping[K, V any](sess *Session, prefix []byte, kc codec.Codec[K], vc codec.Codec[V]) *IterableMapping[K, V] {
	return &IterableMapping[K, V]{
		keys: NewVec[[]byte](sess, keys.Child(prefix, "k"), codec.Bytes{}),
		recs: NewCachedChunk[record[V]](sess, keys.Child(prefix, "v"), Arbitrary, recordCodec[V]{inner: vc}),
		kc:   kc,
	}
}

func (m *IterableMapping[K, V]) Initialize()   { m.keys.Initialize() }
func (m *IterableMapping[K, V]) Len() uint32   { return m.keys.Len() }
func (m *IterableMapping[K, V]) IsEmpty() bool { return m.Len() == 0 }

func (m *IterableMapping[K, V]) suffix(k K) []byte {
	return encodeKey(m.recs.chunk.sess, m.kc, k)
}

// Insert stores val under k and returns the previous value. New keys are
// appended to the key list.
func (m *IterableMapping[K, V]) Insert(k K, val V) (V, bool) {
	n := m.Len()
	if n == math.MaxUint32 {
		panic(ErrLengthOverflow)
	}
	val = own(val)
	s := m.suffix(k)
	if r := m.recs.GetMut(s); r != nil {
		old := r.val
		r.val = val
		return old, true
	}
	m.keys.Push(bytes.Clone(s))
	m.recs.Set(s, record[V]{pos: n, val: val})
	var zero V
	return zero, false
}

// Remove deletes k and returns its value.
func (m *IterableMapping[K, V]) Remove(k K) (V, bool) {
	s := m.suffix(k)
	r := m.recs.replace(s, nil)
	m.recs.Remove(s)
	if r == nil {
		var zero V
		return zero, false
	}
	last := m.Len() - 1
	m.keys.SwapRemove(r.pos)
	if r.pos != last {
		moved := m.keys.Index(r.pos)
		if _, ok := m.recs.MutateWith(moved, func(mr *record[V]) { mr.pos = r.pos }); !ok {
			panic(fmt.Errorf("%w: indexed key %q has no record", ErrKeyNotFound, moved))
		}
	}
	return r.val, true
}

func (m *IterableMapping[K, V]) Get(k K) (V, bool) {
	r, ok := m.recs.Get(m.suffix(k))
	return own(r.val), ok
}

// GetMut returns a pointer to the value of k (nil if absent) and marks it dirty.
func (m *IterableMapping[K, V]) GetMut(k K) *V {
	r := m.recs.GetMut(m.suffix(k))
	if r == nil {
		return nil
	}
	return &r.val
}

func (m *IterableMapping[K, V]) MutateWith(k K, f func(*V)) (V, bool) {
	r, ok := m.recs.MutateWith(m.suffix(k), func(r *record[V]) { f(&r.val) })
	return own(r.val), ok
}

func (m *IterableMapping[K, V]) ContainsKey(k K) bool { return m.recs.Contains(m.suffix(k)) }

// Index returns the value of k and panics with ErrKeyNotFound if absent.
func (m *IterableMapping[K, V]) Index(k K) V {
	s := m.suffix(k)
	r, ok := m.recs.Get(s)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrKeyNotFound, s))
	}
	return r.val
}

// IndexMut is GetMut that panics with ErrKeyNotFound if k is absent.
func (m *IterableMapping[K, V]) IndexMut(k K) *V {
	p := m.GetMut(k)
	if p == nil {
		panic(fmt.Errorf("%w: %q", ErrKeyNotFound, m.suffix(k)))
	}
	return p
}

func (m *IterableMapping[K, V]) Extend(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		m.Insert(k, v)
	}
}

func (m *IterableMapping[K, V]) decodeKey(raw []byte) K {
	k, err := m.kc.Decode(raw)
	if err != nil {
		sess := m.recs.chunk.sess
		sess.hooks.DecodeFailed(string(raw), err)
		sess.fatal(&DecodeError{Key: bytes.Clone(raw), Err: fmt.Errorf("mapping key: %w", err)})
	}
	return k
}

// Keys yields keys in position order.
func (m *IterableMapping[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, raw := range m.keys.All() {
			if !yield(m.decodeKey(raw)) {
				return
			}
		}
	}
}

// All yields (key, value) in position order.
func (m *IterableMapping[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, raw := range m.keys.All() {
			r, _ := m.recs.Get(raw)
			if !yield(m.decodeKey(raw), r.val) {
				return
			}
		}
	}
}

// Clear removes every key, last position first.
func (m *IterableMapping[K, V]) Clear() {
	for m.Len() > 0 {
		raw, _ := m.keys.Pop()
		m.recs.Remove(raw)
	}
}

// Flush writes the key list, then the dirty records.
func (m *IterableMapping[K, V]) Flush() {
	m.keys.Flush()
	m.recs.Flush()
}
