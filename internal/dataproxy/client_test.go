package dataproxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xgui3783/ebrains-util/internal/api"
	"github.com/xgui3783/ebrains-util/internal/dataproxy/dataproxytest"
)

func TestListFollowsMarker(t *testing.T) {
	srv := dataproxytest.NewServer(t)
	for i := range 5 {
		srv.Put("data", fmt.Sprintf("dir/file-%d.txt", i), []byte("x"))
	}
	srv.Put("data", "other.txt", []byte("y"))

	c := New(srv.URL, "", nil)
	c.PageSize = 2

	objects, err := c.Bucket("data").List(context.Background(), "dir/")
	require.NoError(t, err)
	require.Len(t, objects, 5)
	assert.Equal(t, "dir/file-0.txt", objects[0].Name)
	assert.Equal(t, "dir/file-4.txt", objects[4].Name)
	assert.EqualValues(t, 1, objects[0].Bytes)
}

func TestListEmpty(t *testing.T) {
	srv := dataproxytest.NewServer(t)
	srv.CreateBucket("data")

	objects, err := New(srv.URL, "", nil).Bucket("data").List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestListMissingBucket(t *testing.T) {
	srv := dataproxytest.NewServer(t)

	_, err := New(srv.URL, "", nil).Bucket("nope").List(context.Background(), "")
	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 404, httpErr.StatusCode)
	assert.Equal(t, "bucket not found", httpErr.Message)
}

func TestAnonymous(t *testing.T) {
	srv := dataproxytest.NewServer(t)
	srv.CreateBucket("data")

	c := New(srv.URL, "", nil)
	assert.True(t, c.Anonymous())
	_, err := c.Bucket("data").List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, srv.Authorizations())

	c = New(srv.URL, "tok", nil)
	assert.False(t, c.Anonymous())
	_, err = c.Bucket("data").List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", srv.Authorizations()[1])
}

func TestOpen(t *testing.T) {
	srv := dataproxytest.NewServer(t)
	srv.Put("data", "a/b.txt", []byte("hello world"))

	dl, err := New(srv.URL, "", nil).Bucket("data").Open(context.Background(), "a/b.txt")
	require.NoError(t, err)
	defer dl.Close()

	assert.EqualValues(t, 11, dl.Size)
	body, err := io.ReadAll(dl)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
}

func TestOpenMissing(t *testing.T) {
	srv := dataproxytest.NewServer(t)
	srv.CreateBucket("data")

	_, err := New(srv.URL, "", nil).Bucket("data").Open(context.Background(), "missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object not found")
}

func TestUpload(t *testing.T) {
	srv := dataproxytest.NewServer(t)
	srv.Token = "tok"

	b := New(srv.URL, "tok", nil).Bucket("data")
	err := b.Upload(context.Background(), "dir/up.txt", bytes.NewReader([]byte("payload")), 7,
		map[string]string{"X-Object-Meta-Owner": "me"})
	require.NoError(t, err)

	o, ok := srv.Get("data", "dir/up.txt")
	require.True(t, ok)
	assert.Equal(t, "payload", string(o.Data))
	assert.Equal(t, "me", o.Headers.Get("X-Object-Meta-Owner"))
	assert.Equal(t, "application/octet-stream", o.Headers.Get("Content-Type"))
	assert.Empty(t, o.Headers.Get("Authorization"))
}

func TestUploadContentTypeOverride(t *testing.T) {
	srv := dataproxytest.NewServer(t)

	b := New(srv.URL, "tok", nil).Bucket("data")
	err := b.Upload(context.Background(), "x.json", bytes.NewReader([]byte("{}")), -1,
		map[string]string{"Content-Type": "application/json"})
	require.NoError(t, err)

	o, _ := srv.Get("data", "x.json")
	assert.Equal(t, "application/json", o.Headers.Get("Content-Type"))
}

func TestUploadUnauthorized(t *testing.T) {
	srv := dataproxytest.NewServer(t)
	srv.Token = "tok"

	err := New(srv.URL, "", nil).Bucket("data").Upload(context.Background(), "x", bytes.NewReader(nil), 0, nil)
	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 401, httpErr.StatusCode)
}

func TestObjectPath(t *testing.T) {
	b := New("http://example", "", nil).Bucket("my bucket")
	assert.Equal(t, "/v1/buckets/my%20bucket/a/b%20c.txt", b.objectPath("/a/b c.txt"))
}
