package ledgercache

import (
	"fmt"

	"github.com/tidwall/btree"

	"github.com/unkn0wn-root/ledgercache/codec"
	"github.com/unkn0wn-root/ledgercache/internal/keys"
)

// KeyKind selects how chunk suffixes are formed.
type KeyKind uint8

const (
	// Numeric suffixes are 4-byte little-endian uint32 indices.
	Numeric KeyKind = iota
	// Arbitrary suffixes are caller-supplied bytes.
	Arbitrary
)

func (k KeyKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Arbitrary:
		return "arbitrary"
	default:
		return fmt.Sprintf("KeyKind(%d)", uint8(k))
	}
}

// TypedChunk loads and stores the values of prefix|'$'|suffix, without caching.
type TypedChunk[T any] struct {
	sess  *Session
	buf   *keys.Buffer
	kind  KeyKind
	codec codec.Codec[T]
}

func NewTypedChunk[T any](sess *Session, prefix []byte, kind KeyKind, c codec.Codec[T]) TypedChunk[T] {
	return TypedChunk[T]{sess: sess, buf: keys.NewBuffer(prefix), kind: kind, codec: c}
}

func (c TypedChunk[T]) Prefix() []byte { return c.buf.Prefix() }
func (c TypedChunk[T]) Kind() KeyKind  { return c.kind }

// Key composes the backend key of suffix into the chunk's reusable buffer.
// The result is only valid until the next call.
func (c TypedChunk[T]) Key(suffix []byte) []byte {
	if c.kind == Numeric && len(suffix) != keys.IndexLen {
		panic(fmt.Errorf("ledgercache: numeric chunk suffix must be %d bytes, got %d", keys.IndexLen, len(suffix)))
	}
	return c.buf.With(suffix)
}

// Load reads the value at suffix. A backend miss is nil.
func (c TypedChunk[T]) Load(suffix []byte) *T {
	return loadValue(c.sess, c.codec, c.Key(suffix))
}

func (c TypedChunk[T]) Store(suffix []byte, v T) {
	storeValue(c.sess, c.codec, c.Key(suffix), v)
}

// Remove deletes suffix from the backend immediately.
func (c TypedChunk[T]) Remove(suffix []byte) { c.sess.remove(c.Key(suffix)) }

type chunkItem[T any] struct {
	suffix string
	entry  Entry[T]
}

// CachedChunk is the write-back cache over a TypedChunk. Each suffix is
// loaded at most once and cached independently; Flush writes dirty entries in
// ascending suffix order.
type CachedChunk[T any] struct {
	chunk TypedChunk[T]
	cache *btree.BTreeG[*chunkItem[T]]
}

func NewCachedChunk[T any](sess *Session, prefix []byte, kind KeyKind, c codec.Codec[T]) *CachedChunk[T] {
	return &CachedChunk[T]{
		chunk: NewTypedChunk(sess, prefix, kind, c),
		cache: btree.NewBTreeGOptions(func(a, b *chunkItem[T]) bool {
			return a.suffix < b.suffix
		}, btree.Options{NoLocks: true}),
	}
}

func (c *CachedChunk[T]) Prefix() []byte { return c.chunk.Prefix() }

// Cached returns the number of suffixes held in memory.
func (c *CachedChunk[T]) Cached() int { return c.cache.Len() }

func (c *CachedChunk[T]) lookup(suffix []byte) (*chunkItem[T], bool) {
	return c.cache.Get(&chunkItem[T]{suffix: string(suffix)})
}

// entry returns the cached entry of suffix, loading it clean on first touch.
func (c *CachedChunk[T]) entry(suffix []byte) *Entry[T] {
	if it, ok := c.lookup(suffix); ok {
		return &it.entry
	}
	it := &chunkItem[T]{suffix: string(suffix), entry: NewEntry(c.chunk.Load(suffix))}
	c.cache.Set(it)
	return &it.entry
}

// guard validates suffix and rejects writes in view calls.
func (c *CachedChunk[T]) guard(op string, suffix []byte) {
	c.chunk.sess.guardWrite(op, c.chunk.Key(suffix))
}

// Get returns a copy of the value at suffix.
func (c *CachedChunk[T]) Get(suffix []byte) (T, bool) { return c.entry(suffix).Get() }

// Contains reports whether suffix holds a value.
func (c *CachedChunk[T]) Contains(suffix []byte) bool { return c.entry(suffix).IsSome() }

// GetMut returns a pointer into the cache (nil if absent) and marks the entry
// dirty.
func (c *CachedChunk[T]) GetMut(suffix []byte) *T {
	c.guard("get_mut", suffix)
	return c.entry(suffix).GetMut()
}

// Set overwrites suffix without reading the backend.
func (c *CachedChunk[T]) Set(suffix []byte, v T) {
	c.guard("set", suffix)
	v = own(v)
	if it, ok := c.lookup(suffix); ok {
		it.entry.swap(&v)
		return
	}
	c.cache.Set(&chunkItem[T]{suffix: string(suffix), entry: Entry[T]{val: &v, dirty: true}})
}

// Put replaces the value at suffix and returns the previous one.
func (c *CachedChunk[T]) Put(suffix []byte, v T) (T, bool) {
	return deref(c.replace(suffix, &v))
}

// Take empties suffix and returns the previous value. The emptied entry is
// not deleted from the backend on Flush; use Remove for that.
func (c *CachedChunk[T]) Take(suffix []byte) (T, bool) {
	return deref(c.replace(suffix, nil))
}

func (c *CachedChunk[T]) replace(suffix []byte, v *T) *T {
	c.guard("put", suffix)
	if v != nil {
		w := own(*v)
		v = &w
	}
	return c.entry(suffix).swap(v)
}

// MutateWith applies f to the present value at suffix and returns the result.
func (c *CachedChunk[T]) MutateWith(suffix []byte, f func(*T)) (T, bool) {
	p := c.GetMut(suffix)
	if p == nil {
		return deref(p)
	}
	f(p)
	return own(*p), true
}

// Remove drops suffix from the cache and deletes it from the backend now.
func (c *CachedChunk[T]) Remove(suffix []byte) {
	c.guard("del", suffix)
	c.cache.Delete(&chunkItem[T]{suffix: string(suffix)})
	c.chunk.Remove(suffix)
}

// Flush writes every dirty, present entry and marks all entries clean.
func (c *CachedChunk[T]) Flush() {
	c.cache.Scan(func(it *chunkItem[T]) bool {
		if it.entry.IsDirty() && it.entry.val != nil {
			c.chunk.Store([]byte(it.suffix), *it.entry.val)
		}
		it.entry.MarkClean()
		return true
	})
}
