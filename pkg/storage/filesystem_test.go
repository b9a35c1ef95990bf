package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndRead(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("nested/records.json", []byte(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, "nested/records.json", name)

	data, err := store.Read("nested/records.json")
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(data))

	_, err = store.Save("nested/records.json", []byte(`{"a":2}`))
	require.NoError(t, err)
	data, err = store.Read("nested/records.json")
	require.NoError(t, err)
	require.Equal(t, `{"a":2}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(store.Path("nested/records.json")))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLocalStorageMissingFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("absent.json")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotExist))
	require.Error(t, store.Rename("absent.json", "other.json"))
}

func TestLocalStorageRename(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("records.json", []byte("broken"))
	require.NoError(t, err)
	require.NoError(t, store.Rename("records.json", "records.json.bak"))

	_, err = store.Read("records.json")
	require.True(t, errors.Is(err, ErrNotExist))
	data, err := store.Read("records.json.bak")
	require.NoError(t, err)
	require.Equal(t, "broken", string(data))
}
