package ledgercache

import (
	"fmt"
	"iter"
	"math"

	"github.com/unkn0wn-root/ledgercache/codec"
)

// Mapping is a hash map: a uint32 count of present keys at the bare prefix and
// each value at prefix|'$'|encode(key). The key codec must be deterministic.
type Mapping[K, V any] struct {
	len   *CachedCell[uint32]
	chunk *CachedChunk[V]
	keys  codec.Codec[K]
}

func NewMapping[K, V any](sess *Session, prefix []byte, kc codec.Codec[K], vc codec.Codec[V]) *Mapping[K, V] {
	return &Mapping[K, V]{
		len:   NewCachedCell[uint32](sess, prefix, codec.Uint32{}),
		chunk: NewCachedChunk(sess, prefix, Arbitrary, vc),
		keys:  kc,
	}
}

// Initialize seeds the count with 0 if it was never written.
func (m *Mapping[K, V]) Initialize() { initLen(m.len) }

// Len panics with ErrUninitialized if Initialize never ran for this prefix.
func (m *Mapping[K, V]) Len() uint32 { return getLen(m.len) }

func (m *Mapping[K, V]) IsEmpty() bool { return m.Len() == 0 }

func (m *Mapping[K, V]) suffix(k K) []byte { return encodeKey(m.chunk.chunk.sess, m.keys, k) }

func encodeKey[K any](s *Session, c codec.Codec[K], k K) []byte {
	b, err := c.Encode(k)
	if err != nil {
		s.fatal(&EncodeError{Err: fmt.Errorf("mapping key: %w", err)})
	}
	return b
}

// Insert stores val under k and returns the previous value. The count grows
// only when k was absent. Panics with ErrLengthOverflow at math.MaxUint32.
func (m *Mapping[K, V]) Insert(k K, val V) (V, bool) {
	n := m.Len()
	if n == math.MaxUint32 {
		panic(ErrLengthOverflow)
	}
	old := m.chunk.replace(m.suffix(k), &val)
	if old == nil {
		m.len.Set(n + 1)
	}
	return deref(old)
}

// Remove deletes k and returns its value. The backend delete is immediate.
func (m *Mapping[K, V]) Remove(k K) (V, bool) {
	s := m.suffix(k)
	old := m.chunk.replace(s, nil)
	m.chunk.Remove(s)
	if old != nil {
		m.len.Set(m.Len() - 1)
	}
	return deref(old)
}

func (m *Mapping[K, V]) Get(k K) (V, bool) { return m.chunk.Get(m.suffix(k)) }

// GetMut returns a pointer to the value of k (nil if absent) and marks it dirty.
func (m *Mapping[K, V]) GetMut(k K) *V { return m.chunk.GetMut(m.suffix(k)) }

func (m *Mapping[K, V]) MutateWith(k K, f func(*V)) (V, bool) {
	return m.chunk.MutateWith(m.suffix(k), f)
}

func (m *Mapping[K, V]) ContainsKey(k K) bool { return m.chunk.Contains(m.suffix(k)) }

// Index returns the value of k and panics with ErrKeyNotFound if absent.
func (m *Mapping[K, V]) Index(k K) V {
	s := m.suffix(k)
	v, ok := m.chunk.Get(s)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrKeyNotFound, s))
	}
	return v
}

// IndexMut is GetMut that panics with ErrKeyNotFound if k is absent.
func (m *Mapping[K, V]) IndexMut(k K) *V {
	s := m.suffix(k)
	if !m.chunk.Contains(s) {
		panic(fmt.Errorf("%w: %q", ErrKeyNotFound, s))
	}
	return m.chunk.GetMut(s)
}

// Extend inserts every pair of seq.
func (m *Mapping[K, V]) Extend(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		m.Insert(k, v)
	}
}

// Flush writes the count, then the dirty values.
func (m *Mapping[K, V]) Flush() {
	m.len.Flush()
	m.chunk.Flush()
}
