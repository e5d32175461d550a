package counterstore

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNonExistent(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "counter"))

	counter, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, counter)
}

func TestSaveAndLoad(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state", "counter"))

	require.NoError(t, store.Save(42))
	counter, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(42), counter)

	require.NoError(t, store.Save(43))
	counter, _, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(43), counter)
}

func TestSaveLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, "counter"))
	require.NoError(t, store.Save(1))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "counter", entries[0].Name())
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0x00}, 0600))

	_, _, err := New(path).Load()
	assert.Error(t, err)
}

func TestLoadUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")
	data, err := encMode.Marshal(State{Version: Version + 1, Counter: 7})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	_, _, err = New(path).Load()
	assert.ErrorContains(t, err, "unsupported counter state version")
}

func TestReserve(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "counter"))

	require.NoError(t, store.Reserve(41))
	counter, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(42), counter)

	assert.Error(t, store.Reserve(math.MaxUint32))
	counter, _, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), counter)
}
