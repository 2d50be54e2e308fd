package obex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySinkAccumulates(t *testing.T) {
	sink := NewMemorySink()
	require.NoError(t, sink.Write([]byte("hello ")))
	require.NoError(t, sink.Write([]byte("world")))
	assert.Equal(t, "hello world", string(sink.Bytes()))
	assert.NoError(t, sink.Close())
}

func TestFileSinkWritesToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Write([]byte("payload")))
	require.NoError(t, sink.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestBytesSourceChunksAndMarksLast(t *testing.T) {
	src := NewBytesSource([]byte("0123456789"))
	chunk, last, err := src.Next(4)
	require.NoError(t, err)
	assert.False(t, last)
	assert.Equal(t, "0123", string(chunk))

	chunk, last, err = src.Next(4)
	require.NoError(t, err)
	assert.False(t, last)
	assert.Equal(t, "4567", string(chunk))

	chunk, last, err = src.Next(4)
	require.NoError(t, err)
	assert.True(t, last)
	assert.Equal(t, "89", string(chunk))
}

func TestFileSourceReportsSizeAndStreamsContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.bin")
	require.NoError(t, os.WriteFile(path, []byte("abcdef"), 0o644))

	src, err := NewFileSource(path)
	require.NoError(t, err)
	defer src.Close()
	assert.EqualValues(t, 6, src.Size)

	var all []byte
	for {
		chunk, last, err := src.Next(2)
		require.NoError(t, err)
		all = append(all, chunk...)
		if last {
			break
		}
	}
	assert.Equal(t, "abcdef", string(all))
}

func TestNewFileSourceMissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}
