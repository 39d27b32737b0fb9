package ledgercache

import (
	"fmt"
	"iter"
	"math"

	"github.com/unkn0wn-root/ledgercache/codec"
	"github.com/unkn0wn-root/ledgercache/internal/keys"
)

// Vec is a dynamic array: a uint32 length at the bare prefix and the elements
// at prefix|'$'|index. Indices [0, Len()) are present; the rest are absent.
type Vec[T any] struct {
	len   *CachedCell[uint32]
	chunk *CachedChunk[T]
}

func NewVec[T any](sess *Session, prefix []byte, c codec.Codec[T]) *Vec[T] {
	return &Vec[T]{
		len:   NewCachedCell[uint32](sess, prefix, codec.Uint32{}),
		chunk: NewCachedChunk(sess, prefix, Numeric, c),
	}
}

// Initialize seeds the length with 0 if it was never written. In a view call
// the zero is cached but never written.
func (v *Vec[T]) Initialize() { initLen(v.len) }

func initLen(l *CachedCell[uint32]) {
	if _, ok := l.Get(); ok {
		return
	}
	if l.cell.sess.view {
		l.seed(0)
		return
	}
	l.Set(0)
}

func getLen(l *CachedCell[uint32]) uint32 {
	n, ok := l.Get()
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUninitialized, l.Key()))
	}
	return n
}

// Len panics with ErrUninitialized if Initialize never ran for this prefix.
func (v *Vec[T]) Len() uint32 { return getLen(v.len) }

func (v *Vec[T]) IsEmpty() bool { return v.Len() == 0 }

// Push appends val. It panics with ErrLengthOverflow, leaving the vector
// unchanged, when the length is already math.MaxUint32.
func (v *Vec[T]) Push(val T) {
	n := v.Len()
	if n == math.MaxUint32 {
		panic(ErrLengthOverflow)
	}
	v.chunk.Set(keys.Index(n), val)
	v.len.Set(n + 1)
}

// Pop removes and returns the last element.
func (v *Vec[T]) Pop() (T, bool) {
	p := v.pop()
	return deref(p)
}

func (v *Vec[T]) pop() *T {
	n := v.Len()
	if n == 0 {
		return nil
	}
	n--
	v.len.Set(n)
	idx := keys.Index(n)
	p := v.chunk.replace(idx, nil)
	v.chunk.Remove(idx)
	return p
}

// Get returns a copy of element n, or false when n is out of bounds.
func (v *Vec[T]) Get(n uint32) (T, bool) {
	if n >= v.Len() {
		var zero T
		return zero, false
	}
	return v.chunk.Get(keys.Index(n))
}

// GetMut returns a pointer to element n and marks it dirty; nil when out of
// bounds.
func (v *Vec[T]) GetMut(n uint32) *T {
	if n >= v.Len() {
		return nil
	}
	return v.chunk.GetMut(keys.Index(n))
}

func (v *Vec[T]) MutateWith(n uint32, f func(*T)) (T, bool) {
	if n >= v.Len() {
		var zero T
		return zero, false
	}
	return v.chunk.MutateWith(keys.Index(n), f)
}

// Last returns the last element.
func (v *Vec[T]) Last() (T, bool) {
	n := v.Len()
	if n == 0 {
		var zero T
		return zero, false
	}
	return v.chunk.Get(keys.Index(n - 1))
}

func (v *Vec[T]) mustInBounds(n, l uint32) {
	if n >= l {
		panic(fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, n, l))
	}
}

// Index returns element n and panics when n is out of bounds.
func (v *Vec[T]) Index(n uint32) T {
	v.mustInBounds(n, v.Len())
	val, _ := v.chunk.Get(keys.Index(n))
	return val
}

// IndexMut is GetMut that panics when n is out of bounds.
func (v *Vec[T]) IndexMut(n uint32) *T {
	v.mustInBounds(n, v.Len())
	return v.chunk.GetMut(keys.Index(n))
}

// SetIndex overwrites element n and panics when n is out of bounds.
func (v *Vec[T]) SetIndex(n uint32, val T) {
	v.mustInBounds(n, v.Len())
	v.chunk.Set(keys.Index(n), val)
}

// Swap exchanges elements a and b. It panics if either is out of bounds.
func (v *Vec[T]) Swap(a, b uint32) {
	l := v.Len()
	v.mustInBounds(a, l)
	v.mustInBounds(b, l)
	if a == b {
		return
	}
	ia, ib := keys.Index(a), keys.Index(b)
	pa := v.chunk.replace(ia, nil)
	pb := v.chunk.replace(ib, pa)
	v.chunk.replace(ia, pb)
}

// SwapRemove removes element n by moving the last element into its place.
// O(1); does not preserve order.
func (v *Vec[T]) SwapRemove(n uint32) (T, bool) {
	l := v.Len()
	if l == 0 || n >= l {
		var zero T
		return zero, false
	}
	if n == l-1 {
		return v.Pop()
	}
	last := v.pop()
	return deref(v.chunk.replace(keys.Index(n), last))
}

// Extend pushes every value of seq.
func (v *Vec[T]) Extend(seq iter.Seq[T]) {
	for val := range seq {
		v.Push(val)
	}
}

// Clear pops every element.
func (v *Vec[T]) Clear() {
	for v.Len() > 0 {
		v.pop()
	}
}

// All yields (index, element) from first to last. Elements are loaded on
// demand; the bound is the length when iteration starts.
func (v *Vec[T]) All() iter.Seq2[uint32, T] {
	return func(yield func(uint32, T) bool) {
		n := v.Len()
		for i := uint32(0); i < n; i++ {
			val, _ := v.chunk.Get(keys.Index(i))
			if !yield(i, val) {
				return
			}
		}
	}
}

// Backward yields (index, element) from last to first.
func (v *Vec[T]) Backward() iter.Seq2[uint32, T] {
	return func(yield func(uint32, T) bool) {
		for i := v.Len(); i > 0; i-- {
			val, _ := v.chunk.Get(keys.Index(i - 1))
			if !yield(i-1, val) {
				return
			}
		}
	}
}

// Values yields elements from first to last.
func (v *Vec[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, val := range v.All() {
			if !yield(val) {
				return
			}
		}
	}
}

// Flush writes the length, then the dirty elements.
func (v *Vec[T]) Flush() {
	v.len.Flush()
	v.chunk.Flush()
}
