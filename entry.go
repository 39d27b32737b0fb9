package ledgercache

import "bytes"

// Entry is one cached value and whether it changed since the last flush.
// A nil value means absent.
type Entry[T any] struct {
	val   *T
	dirty bool
}

// NewEntry returns a clean entry holding v (nil for absent).
func NewEntry[T any](v *T) Entry[T] { return Entry[T]{val: v} }

// Get returns a copy of the value.
func (e *Entry[T]) Get() (T, bool) {
	v, ok := deref(e.val)
	return own(v), ok
}

// GetMut returns the cached value for in-place mutation and marks the entry
// dirty, whether or not the caller ends up writing through the pointer.
func (e *Entry[T]) GetMut() *T {
	e.dirty = true
	return e.val
}

// Update replaces the value without marking the entry dirty.
func (e *Entry[T]) Update(v *T) { e.val = v }

// Put replaces the value, marks the entry dirty and returns the old value.
func (e *Entry[T]) Put(v *T) (T, bool) { return deref(e.swap(v)) }

// Take empties the entry, marks it dirty and returns the old value.
func (e *Entry[T]) Take() (T, bool) { return e.Put(nil) }

func (e *Entry[T]) swap(v *T) *T {
	old := e.val
	e.val = v
	e.dirty = true
	return old
}

func (e *Entry[T]) IsSome() bool  { return e.val != nil }
func (e *Entry[T]) IsDirty() bool { return e.dirty }
func (e *Entry[T]) MarkDirty()    { e.dirty = true }
func (e *Entry[T]) MarkClean()    { e.dirty = false }

// Slot wraps an Entry that may not have been loaded yet. A Slot starts out
// unsynced and becomes synced on its first Update; reading an unsynced slot
// panics with ErrDesync.
type Slot[T any] struct {
	synced bool
	entry  Entry[T]
}

func (s *Slot[T]) Synced() bool { return s.synced }

// Update syncs the slot (if needed) and replaces its value without marking it
// dirty. Dirty state of an already synced slot is kept.
func (s *Slot[T]) Update(v *T) {
	if !s.synced {
		s.entry = NewEntry(v)
		s.synced = true
		return
	}
	s.entry.Update(v)
}

// Entry returns the synced entry.
func (s *Slot[T]) Entry() *Entry[T] {
	if !s.synced {
		panic(ErrDesync)
	}
	return &s.entry
}

// own detaches byte slices from the caller's backing array so that values
// entering or leaving the cache never share memory with it.
func own[T any](v T) T {
	if b, ok := any(v).([]byte); ok && b != nil {
		return any(bytes.Clone(b)).(T)
	}
	return v
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
