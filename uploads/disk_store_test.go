package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveOpenRemove(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	key, err := store.Save(ctx, strings.NewReader("name,price\nLamp,1\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".csv"))

	f, err := store.Open(ctx, key)
	require.NoError(t, err)
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "name,price\nLamp,1\n", string(b))

	require.NoError(t, store.Remove(ctx, key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Remove(ctx, key))
}

func TestDiskStore_KeysStayInsideDir(t *testing.T) {
	ctx := context.Background()
	outside := filepath.Join(t.TempDir(), "secret.csv")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(ctx, "../"+filepath.Base(filepath.Dir(outside))+"/secret.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}
