package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false, nil)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path, false, nil)
	assert.ErrorContains(t, err, "is not a directory")
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestWithBatchAndDropPrefix(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, k := range []string{"a:1", "a:2", "b:1"} {
			if err := wb.Set([]byte(k), []byte("v")); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, countKeys(t, backend))

	require.NoError(t, backend.DropPrefix("a:"))
	assert.Equal(t, 1, countKeys(t, backend))
}

func countKeys(t *testing.T, backend *Backend) int {
	t.Helper()
	n := 0
	err := backend.WithTx(func(tx *badger.Txn) error {
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			n++
		}
		return nil
	}, false)
	require.NoError(t, err)
	return n
}

func TestKeys(t *testing.T) {
	key := makePostingsKey("title:main", "lorem")
	field, code, ok := parsePostingsKey(key)
	require.True(t, ok)
	assert.Equal(t, "title:main", field)
	assert.Equal(t, "lorem", code)

	_, _, ok = parsePostingsKey(makeDocumentKey("1"))
	assert.False(t, ok)
	_, _, ok = parsePostingsKey([]byte(postingsPrefix + "nofield"))
	assert.False(t, ok)

	query, ok := trimKeyPrefix(makePopularKey("lorem ipsum"), popularPrefix)
	require.True(t, ok)
	assert.Equal(t, "lorem ipsum", query)
	_, ok = trimKeyPrefix(makeDocumentKey("1"), popularPrefix)
	assert.False(t, ok)
}
