package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	data := []byte("1,2,3\n4,5,6\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "points.csv"), data, 0o600))

	store := NewLocalStore(dir)
	ctx := context.Background()

	blob, err := store.Open(ctx, "points.csv")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "4,5,6", string(buf))

	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, data, all)

	seq, err := io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, data, seq)

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.csv")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Escape", func(t *testing.T) {
		_, err := store.Open(ctx, "../outside.csv")
		assert.Error(t, err)
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Open(cctx, "points.csv")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Empty", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.csv"), nil, 0o600))
		b, err := store.Open(ctx, "empty.csv")
		require.NoError(t, err)
		defer b.Close()

		all, err := ReadAll(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestLocalStore_NoRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.fvecs")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o600))

	blob, err := NewLocalStore("").Open(context.Background(), path)
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(4), blob.Size())
}
