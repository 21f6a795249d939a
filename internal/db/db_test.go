package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "ebrains.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGet(t *testing.T) {
	s := openTemp(t)

	v, err := s.Get(HashBucket, []byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Set(HashBucket, []byte("k"), []byte("v1")))
	v, err = s.Get(HashBucket, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, s.Delete(HashBucket, []byte("k")))
	v, err = s.Get(HashBucket, []byte("k"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestUnknownBucket(t *testing.T) {
	s := openTemp(t)

	_, err := s.Get([]byte("nope"), []byte("k"))
	require.ErrorIs(t, err, ErrBucketNotFound)
	require.ErrorIs(t, s.Set([]byte("nope"), []byte("k"), nil), ErrBucketNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ebrains.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(HashBucket, []byte("k"), []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(HashBucket, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
