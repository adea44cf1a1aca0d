package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/poiesic/boox/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() *core.State {
	state := core.NewState(core.Config{ID: "id", Features: []string{"title"}, Attributes: []string{"url"}})
	state.Documents["1"] = &core.Document{
		ID:         "1",
		Attributes: core.Attributes{"title": "Document 1", "url": "/foo"},
		Magnitude:  0.7071067811865476,
	}
	state.Features["title"] = core.Encodings{
		"document": core.Postings{"1": 0.5},
		"1":        core.Postings{"1": 0.5},
	}
	state.PopularSearches["document"] = 3
	return state
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatGzip, FormatDeflate} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			info, err := WriteSnapshot(&buf, testState(), format)
			require.NoError(t, err)
			assert.Equal(t, format, info.Format)
			assert.Positive(t, info.StateBytes)
			assert.Len(t, info.Digest, DigestSize*2)

			state, err := ReadSnapshot(&buf)
			require.NoError(t, err)
			assert.Equal(t, testState(), state)
		})
	}
}

func TestSnapshotChecksum(t *testing.T) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, CompressionLevel)
	require.NoError(t, err)
	gz.Comment = digestPrefix + DigestHex([]byte("something else"))
	_, err = gz.Write([]byte(`{"configs":{"id":"id","features":[],"attributes":[]}}`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	_, err = ReadSnapshot(&buf)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestReadSnapshotInvalid(t *testing.T) {
	_, err := ReadSnapshot(bytes.NewReader([]byte(`{"configs":{}}`)))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ReadSnapshot(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrTruncatedData)

	var buf bytes.Buffer
	_, err = WriteSnapshot(&buf, testState(), FormatDeflate)
	require.NoError(t, err)
	_, err = ReadSnapshot(bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestWriteSnapshotUnknownFormat(t *testing.T) {
	_, err := WriteSnapshot(&bytes.Buffer{}, testState(), Format(9))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSnapshotPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "books-trained.gz"), SnapshotPath(filepath.Join("data", "books.json"), "", FormatGzip))
	assert.Equal(t, filepath.Join("out", "books-trained.dat"), SnapshotPath(filepath.Join("data", "books.json"), "out", FormatDeflate))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state-trained.gz")
	store := NewFileStore(path, FormatGzip)

	_, err := store.LoadState(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveState(ctx, testState()))
	assert.Positive(t, store.LastSaved().StateBytes)
	_, err = os.Stat(path)
	require.NoError(t, err)

	state, err := NewFileStore(path, FormatDeflate).LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, testState(), state)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.SaveState(ctx, testState()), ErrStorageClosed)
	_, err = store.LoadState(ctx)
	assert.ErrorIs(t, err, ErrStorageClosed)
}
