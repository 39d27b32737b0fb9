package ledgercache

import "github.com/unkn0wn-root/ledgercache/codec"

// TypedCell loads and stores one value under one key, without caching.
type TypedCell[T any] struct {
	sess  *Session
	key   []byte
	codec codec.Codec[T]
}

func NewTypedCell[T any](sess *Session, key []byte, c codec.Codec[T]) TypedCell[T] {
	return TypedCell[T]{sess: sess, key: clone(key), codec: c}
}

func (c TypedCell[T]) Key() []byte { return c.key }

// Load reads the value. A backend miss is nil.
func (c TypedCell[T]) Load() *T { return loadValue(c.sess, c.codec, c.key) }

func (c TypedCell[T]) Store(v T) { storeValue(c.sess, c.codec, c.key, v) }

// Remove deletes the key from the backend immediately.
func (c TypedCell[T]) Remove() { c.sess.remove(c.key) }

// CachedCell is the write-back cache over a TypedCell: one backend read at
// most, one write on Flush if the value changed.
type CachedCell[T any] struct {
	cell TypedCell[T]
	slot Slot[T]
}

func NewCachedCell[T any](sess *Session, key []byte, c codec.Codec[T]) *CachedCell[T] {
	return &CachedCell[T]{cell: NewTypedCell(sess, key, c)}
}

func (c *CachedCell[T]) Key() []byte { return c.cell.key }

func (c *CachedCell[T]) sync() *Entry[T] {
	if !c.slot.Synced() {
		c.slot.Update(c.cell.Load())
	}
	return c.slot.Entry()
}

// Get returns a copy of the value, loading it on first access.
func (c *CachedCell[T]) Get() (T, bool) { return c.sync().Get() }

// GetMut returns a pointer into the cache (nil if absent) and marks the cell
// dirty.
func (c *CachedCell[T]) GetMut() *T {
	c.cell.sess.guardWrite("get_mut", c.cell.key)
	return c.sync().GetMut()
}

// Set replaces the value without reading the backend.
func (c *CachedCell[T]) Set(v T) {
	c.cell.sess.guardWrite("set", c.cell.key)
	v = own(v)
	c.slot.Update(&v)
	c.slot.Entry().MarkDirty()
}

// MutateWith applies f to the present value and returns the result.
func (c *CachedCell[T]) MutateWith(f func(*T)) (T, bool) {
	p := c.GetMut()
	if p == nil {
		return deref(p)
	}
	f(p)
	return own(*p), true
}

// Take empties the cell and returns the old value. The emptied cell is not
// deleted from the backend on Flush; use Remove for that.
func (c *CachedCell[T]) Take() (T, bool) {
	c.cell.sess.guardWrite("take", c.cell.key)
	return c.sync().Take()
}

// Remove empties the cell and deletes the key from the backend now.
func (c *CachedCell[T]) Remove() {
	c.cell.sess.guardWrite("del", c.cell.key)
	c.slot.Update(nil)
	c.slot.Entry().MarkClean()
	c.cell.Remove()
}

func (c *CachedCell[T]) IsDirty() bool { return c.slot.Synced() && c.slot.entry.IsDirty() }

// seed caches v as if it had been loaded. Used by view calls that must not
// write a missing length counter.
func (c *CachedCell[T]) seed(v T) { c.slot.Update(&v) }

// Flush writes the value if it is dirty and present, then marks it clean.
func (c *CachedCell[T]) Flush() {
	if !c.slot.Synced() {
		return
	}
	e := c.slot.Entry()
	if e.IsDirty() && e.val != nil {
		c.cell.Store(*e.val)
	}
	e.MarkClean()
}
