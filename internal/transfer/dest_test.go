package transfer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestFileCreatesTrailingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	got, err := DestFile("a/b.txt", "outdir/", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("outdir", "b.txt"), got)
	assert.DirExists(t, "outdir")
}

func TestDestFileExistingDirectory(t *testing.T) {
	dir := t.TempDir()

	got, err := DestFile("a/b.txt", dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.txt"), got)
}

func TestDestFileExistingFile(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "b.txt")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	_, err := DestFile("a/b.txt", existing, false)
	require.ErrorIs(t, err, ErrDestExists)

	got, err := DestFile("a/b.txt", existing, true)
	require.NoError(t, err)
	assert.Equal(t, existing, got)
}

func TestDestFileDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	got, err := DestFile("a/b.txt", "", false)
	require.NoError(t, err)
	assert.Equal(t, "b.txt", got)

	got, err = DestFile("a/b.txt", "renamed.txt", false)
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", got)
}

func TestTempPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "tmp_b.txt"), TempPath(filepath.Join("out", "b.txt")))
}

func TestWriteAtomic(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "b.txt")

	n, err := WriteAtomic(dest, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.NoFileExists(t, TempPath(dest))
}

func TestWriteAtomicOverwrites(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "b.txt")
	require.NoError(t, os.WriteFile(dest, []byte("old contents"), 0o644))

	_, err := WriteAtomic(dest, strings.NewReader("new"))
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

type failingReader struct{ sent bool }

func (f *failingReader) Read(p []byte) (int, error) {
	if !f.sent {
		f.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestWriteAtomicCleansUpOnFailure(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "b.txt")

	_, err := WriteAtomic(dest, &failingReader{})
	require.EqualError(t, err, "connection reset")
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, TempPath(dest))
}

func TestWriteAtomicEmpty(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty")

	n, err := WriteAtomic(dest, io.LimitReader(strings.NewReader("x"), 0))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.FileExists(t, dest)
}
