package tokenstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore(t *testing.T) {
	t.Run("creates directory with correct permissions", func(t *testing.T) {
		stateDir := filepath.Join(t.TempDir(), "state")

		store, err := NewFileStore(stateDir)
		require.NoError(t, err)
		assert.NotNil(t, store)

		info, err := os.Stat(stateDir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	})

	t.Run("starts empty", func(t *testing.T) {
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)

		token, ok := store.Get()
		assert.False(t, ok)
		assert.Empty(t, token)
	})
}

func TestFileStore_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("header.payload.signature"))

	token, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "header.payload.signature", token)

	// stored under the fixed key as the raw token
	data, err := os.ReadFile(filepath.Join(tmpDir, TokenKey))
	require.NoError(t, err)
	assert.Equal(t, "header.payload.signature", string(data))

	info, err := os.Stat(filepath.Join(tmpDir, TokenKey))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, store.Remove())

	token, ok = store.Get()
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestFileStore_AcceptsAnyString(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, v := range []string{"not-a-jwt", "  spaced  ", "ünïcode"} {
		require.NoError(t, store.Set(v))
		got, ok := store.Get()
		require.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestFileStore_SetOverwrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("first"))
	require.NoError(t, store.Set("second"))

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestFileStore_RemoveWhenEmpty(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Remove())
	require.NoError(t, store.Remove())
}

func TestFileStore_SharedBetweenInstances(t *testing.T) {
	tmpDir := t.TempDir()

	a, err := NewFileStore(tmpDir)
	require.NoError(t, err)
	b, err := NewFileStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, a.Set("shared-token"))

	got, ok := b.Get()
	require.True(t, ok)
	assert.Equal(t, "shared-token", got)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get()
	assert.False(t, ok)

	require.NoError(t, store.Set("token-123"))
	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "token-123", got)

	require.NoError(t, store.Remove())
	_, ok = store.Get()
	assert.False(t, ok)
}
