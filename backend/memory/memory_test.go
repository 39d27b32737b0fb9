package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unkn0wn-root/ledgercache/backend"
	"github.com/unkn0wn-root/ledgercache/backend/backendtest"
)

func TestConformance(t *testing.T) {
	backendtest.Run(t, New())
}

func TestKeysSorted(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, k := range []string{"b", "a$\x01", "a"} {
		require.NoError(t, s.Set(ctx, []byte(k), nil))
	}
	require.Equal(t, 3, s.Len())
	require.Equal(t, [][]byte{[]byte("a"), []byte("a$\x01"), []byte("b")}, s.Keys())
}

func TestClosed(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := s.NewBatch()
	b.Set([]byte("k"), []byte("v"))
	require.NoError(t, s.Close(ctx))

	_, _, err := s.Get(ctx, []byte("k"))
	require.ErrorIs(t, err, backend.ErrClosed)
	require.ErrorIs(t, s.Set(ctx, []byte("k"), nil), backend.ErrClosed)
	require.ErrorIs(t, b.Commit(ctx), backend.ErrClosed)
}
