package liveboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageImplementations(t *testing.T) {
	fs, err := NewFileStorage(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)

	for name, storage := range map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   fs,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, ok, err := storage.Load(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, storage.Save(ctx, PinnedDashboardsKey, []byte(`[]`)))
			require.NoError(t, storage.Save(ctx, PinnedDashboardsKey, []byte(`[1]`)))
			b, ok, err := storage.Load(ctx, PinnedDashboardsKey)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[1]`, string(b))

			_, _, err = storage.Load(ctx, "")
			assert.ErrorIs(t, err, ErrMissingStorageKey)
			assert.ErrorIs(t, storage.Save(ctx, "", nil), ErrMissingStorageKey)
		})
	}
}

func TestFileStorageSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Save(context.Background(), "../escape/key", []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".._escape_key.json", entries[0].Name())
}
