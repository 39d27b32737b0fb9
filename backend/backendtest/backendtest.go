// Package backendtest is a conformance suite shared by the Backend
// implementations.
package backendtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unkn0wn-root/ledgercache/backend"
)

// Run exercises b. It must be empty when passed in. Batch semantics are
// checked when b implements backend.Batcher.
func Run(t *testing.T, b backend.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		v, ok, err := b.Get(ctx, []byte("absent"))
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, v)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		k := []byte("cell")
		require.NoError(t, b.Set(ctx, k, []byte{1, 2, 3}))
		require.NoError(t, b.Set(ctx, k, []byte{4}))
		v, ok, err := b.Get(ctx, k)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte{4}, v)
	})

	t.Run("empty value is present", func(t *testing.T) {
		k := []byte("empty")
		require.NoError(t, b.Set(ctx, k, []byte{}))
		v, ok, err := b.Get(ctx, k)
		require.NoError(t, err)
		require.True(t, ok)
		require.Empty(t, v)
	})

	t.Run("values are copied", func(t *testing.T) {
		k, in := []byte("copy"), []byte("abc")
		require.NoError(t, b.Set(ctx, k, in))
		in[0] = 'x'
		v, _, err := b.Get(ctx, k)
		require.NoError(t, err)
		require.Equal(t, "abc", string(v))
		v[1] = 'y'
		again, _, err := b.Get(ctx, k)
		require.NoError(t, err)
		require.Equal(t, "abc", string(again))
	})

	t.Run("binary keys", func(t *testing.T) {
		k := []byte{'v', 0x24, 0, 0, 0, 0}
		require.NoError(t, b.Set(ctx, k, []byte("zero")))
		_, ok, err := b.Get(ctx, k[:5])
		require.NoError(t, err)
		require.False(t, ok)
		v, ok, err := b.Get(ctx, k)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "zero", string(v))
	})

	t.Run("delete", func(t *testing.T) {
		k := []byte("gone")
		require.NoError(t, b.Set(ctx, k, []byte("x")))
		require.NoError(t, b.Del(ctx, k))
		_, ok, err := b.Get(ctx, k)
		require.NoError(t, err)
		require.False(t, ok)
		require.NoError(t, b.Del(ctx, k), "deleting a missing key")
	})

	bt, ok := b.(backend.Batcher)
	if !ok {
		return
	}
	t.Run("batch", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, []byte("b/old"), []byte("1")))

		batch := bt.NewBatch()
		batch.Set([]byte("b/a"), []byte("A"))
		batch.Set([]byte("b/a"), []byte("AA"))
		batch.Set([]byte("b/empty"), []byte{})
		batch.Del([]byte("b/old"))
		require.Equal(t, 4, batch.Len())

		_, ok, err := b.Get(ctx, []byte("b/a"))
		require.NoError(t, err)
		require.False(t, ok, "batch visible before commit")

		require.NoError(t, batch.Commit(ctx))

		v, ok, err := b.Get(ctx, []byte("b/a"))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "AA", string(v))
		_, ok, err = b.Get(ctx, []byte("b/empty"))
		require.NoError(t, err)
		require.True(t, ok)
		_, ok, err = b.Get(ctx, []byte("b/old"))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("batch discard", func(t *testing.T) {
		batch := bt.NewBatch()
		batch.Set([]byte("d/a"), []byte("A"))
		batch.Discard()
		batch.Discard()
		_, ok, err := b.Get(ctx, []byte("d/a"))
		require.NoError(t, err)
		require.False(t, ok)
	})
}
