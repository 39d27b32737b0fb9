package ledgercache

import (
	"bytes"
	"testing"

	"github.com/unkn0wn-root/ledgercache/codec"
	"github.com/unkn0wn-root/ledgercache/internal/keys"
)

func TestTypedChunkKeyComposition(t *testing.T) {
	sess := newTestSession(t, newCountingBackend(), false)

	num := NewTypedChunk[uint8](sess, []byte("vec"), Numeric, codec.Uint8{})
	if got, want := num.Key(keys.Index(258)), []byte{'v', 'e', 'c', 0x24, 0x02, 0x01, 0x00, 0x00}; !bytes.Equal(got, want) {
		t.Fatalf("numeric key: got %x want %x", got, want)
	}

	arb := NewTypedChunk[uint8](sess, []byte("map"), Arbitrary, codec.Uint8{})
	if got := arb.Key([]byte("alice")); !bytes.Equal(got, []byte("map$alice")) {
		t.Fatalf("arbitrary key: got %q", got)
	}
	if got := arb.Key([]byte("b")); !bytes.Equal(got, []byte("map$b")) {
		t.Fatalf("suffix not truncated: got %q", got)
	}

	mustPanic(t, func() { num.Key([]byte("toolong")) })
}

func TestChunkGetLoadsEachSuffixOnce(t *testing.T) {
	be := newCountingBackend()
	be.put(t, []byte("m$a"), []byte{1})

	c := NewCachedChunk[uint8](newTestSession(t, be, false), []byte("m"), Arbitrary, codec.Uint8{})
	if v, ok := c.Get([]byte("a")); !ok || v != 1 {
		t.Fatalf("Get a: v=%d ok=%v", v, ok)
	}
	if _, ok := c.Get([]byte("b")); ok {
		t.Fatalf("Get b: expected miss")
	}
	c.Get([]byte("a"))
	c.Get([]byte("b"))
	c.Contains([]byte("a"))
	if be.gets != 2 || c.Cached() != 2 {
		t.Fatalf("gets=%d cached=%d, want 2 and 2", be.gets, c.Cached())
	}
}

func TestChunkSetIsBlindOverwrite(t *testing.T) {
	be := newCountingBackend()
	c := NewCachedChunk[uint8](newTestSession(t, be, false), []byte("m"), Arbitrary, codec.Uint8{})
	c.Set([]byte("a"), 5)
	if be.gets != 0 {
		t.Fatalf("Set read the backend")
	}
	if v, _ := c.Get([]byte("a")); v != 5 || be.gets != 0 {
		t.Fatalf("Get after Set: v=%d gets=%d", v, be.gets)
	}
	c.Set([]byte("a"), 6)
	if v, _ := c.Get([]byte("a")); v != 6 {
		t.Fatalf("overwrite: v=%d", v)
	}
}

func TestChunkPutTakeMutate(t *testing.T) {
	be := newCountingBackend()
	be.put(t, []byte("m$a"), []byte{1})
	c := NewCachedChunk[uint8](newTestSession(t, be, false), []byte("m"), Arbitrary, codec.Uint8{})

	if old, ok := c.Put([]byte("a"), 2); !ok || old != 1 {
		t.Fatalf("Put: old=%d ok=%v", old, ok)
	}
	if v, ok := c.MutateWith([]byte("a"), func(v *uint8) { *v *= 10 }); !ok || v != 20 {
		t.Fatalf("MutateWith: v=%d ok=%v", v, ok)
	}
	if p := c.GetMut([]byte("a")); p == nil || *p != 20 {
		t.Fatalf("GetMut: %v", p)
	}
	if old, ok := c.Take([]byte("a")); !ok || old != 20 {
		t.Fatalf("Take: old=%d ok=%v", old, ok)
	}
	if c.Contains([]byte("a")) {
		t.Fatalf("taken entry still present")
	}
	if _, ok := c.MutateWith([]byte("zz"), func(*uint8) {}); ok {
		t.Fatalf("MutateWith on absent must report absent")
	}
}

func TestChunkRemoveIsEager(t *testing.T) {
	be := newCountingBackend()
	be.put(t, []byte("m$a"), []byte{1})
	c := NewCachedChunk[uint8](newTestSession(t, be, false), []byte("m"), Arbitrary, codec.Uint8{})

	c.Get([]byte("a"))
	c.Remove([]byte("a"))
	if _, ok := be.raw(t, []byte("m$a")); ok {
		t.Fatalf("Remove must delete immediately")
	}
	if c.Cached() != 0 {
		t.Fatalf("Remove must drop the cache entry, cached=%d", c.Cached())
	}
	// no tombstone: the next access reads the backend again
	if _, ok := c.Get([]byte("a")); ok || be.gets != 2 {
		t.Fatalf("after Remove: ok=%v gets=%d", ok, be.gets)
	}
}

func TestChunkFlushWritesDirtyPresentInOrder(t *testing.T) {
	be := newCountingBackend()
	be.put(t, []byte("m$clean"), []byte{1})
	be.put(t, []byte("m$taken"), []byte{2})
	sess := newTestSession(t, be, false)

	var order []string
	sess.hooks = recordHooks{stores: &order}

	c := NewCachedChunk[uint8](sess, []byte("m"), Arbitrary, codec.Uint8{})
	c.Get([]byte("clean"))
	c.Take([]byte("taken"))
	c.Set([]byte("z"), 26)
	c.Set([]byte("b"), 2)
	c.Flush()

	if want := []string{"m$b", "m$z"}; len(order) != 2 || order[0] != want[0] || order[1] != want[1] {
		t.Fatalf("store order = %q, want %q", order, want)
	}
	if v, ok := be.raw(t, []byte("m$taken")); !ok || v[0] != 2 {
		t.Fatalf("dirty-empty entry must not be deleted on flush")
	}

	c.Flush()
	if be.sets != 2 {
		t.Fatalf("second flush wrote again: sets=%d", be.sets)
	}
}

func TestNumericChunkRejectsBadSuffix(t *testing.T) {
	c := NewCachedChunk[uint8](newTestSession(t, newCountingBackend(), false), []byte("v"), Numeric, codec.Uint8{})
	mustPanic(t, func() { c.Set([]byte{1, 2}, 1) })
	mustPanic(t, func() { c.Get([]byte{1}) })
}

type recordHooks struct {
	NopHooks
	stores *[]string
}

func (h recordHooks) BackendStore(key string, _ int) { *h.stores = append(*h.stores, key) }
