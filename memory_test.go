package ezfs

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_Roundtrip(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.WriteBytes(ctx, "k", []byte("v")))

	data, err := b.ReadBytes(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))

	exists, err := b.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, b.Remove(ctx, "k"))

	exists, err = b.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestMemoryBackend_NotFound(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	_, err := b.ReadBytes(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, b.Remove(ctx, "missing"), ErrNotFound)
	require.ErrorIs(t, b.Rename(ctx, "missing", "dst"), ErrNotFound)
}

func TestMemoryBackend_Rename(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.WriteBytes(ctx, "src", []byte("v")))
	require.NoError(t, b.WriteBytes(ctx, "dst", []byte("old")))
	require.NoError(t, b.Rename(ctx, "src", "dst"))

	_, err := b.ReadBytes(ctx, "src")
	require.ErrorIs(t, err, ErrNotFound)

	data, err := b.ReadBytes(ctx, "dst")
	require.NoError(t, err)
	require.Equal(t, "v", string(data))
	require.Equal(t, 1, b.Len())
}

func TestMemoryBackend_RenameSamePath(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.WriteBytes(ctx, "p", []byte("keep me")))
	require.NoError(t, b.Rename(ctx, "p", "p"))

	data, err := b.ReadBytes(ctx, "p")
	require.NoError(t, err)
	require.Equal(t, "keep me", string(data))

	require.ErrorIs(t, b.Rename(ctx, "missing", "missing"), ErrNotFound)
}

func TestMemoryBackend_DefensiveCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	in := []byte("original")
	require.NoError(t, b.WriteBytes(ctx, "k", in))
	in[0] = 'X'

	out, err := b.ReadBytes(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "original", string(out))

	out[0] = 'Y'
	again, err := b.ReadBytes(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "original", string(again))
}

func TestMemoryBackend_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, b.WriteBytes(ctx, "shared", []byte("payload")))
			_, _ = b.ReadBytes(ctx, "shared")
		}()
	}
	wg.Wait()

	data, err := b.ReadBytes(ctx, "shared")
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}
