package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetsHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := New(server.URL, WithToken("test-token"))
	resp, err := c.R().Get("/ping")
	require.NoError(t, err)
	require.NoError(t, Check(resp))

	assert.Equal(t, "Bearer test-token", got.Get("Authorization"))
	assert.Equal(t, DefaultUserAgent(), got.Get("User-Agent"))
	assert.Len(t, got.Get(RequestIDHeader), 36)
}

func TestNewWithoutToken(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	_, err := New("").R().Get(server.URL + "/anything")
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestDefaultUserAgent(t *testing.T) {
	ua := DefaultUserAgent()
	assert.True(t, strings.HasPrefix(ua, "ebrains-util/"), ua)
	assert.Contains(t, ua, "+https://github.com/xgui3783/ebrains-util")
}

func TestWithContentLength(t *testing.T) {
	var (
		length  int64
		chunked bool
		body    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		length = r.ContentLength
		chunked = len(r.TransferEncoding) > 0
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	}))
	defer server.Close()

	ctx := WithContentLength(context.Background(), 5)
	_, err := New(server.URL).R().
		SetContext(ctx).
		SetBody(io.NopCloser(strings.NewReader("hello"))).
		Put("/object")
	require.NoError(t, err)

	assert.EqualValues(t, 5, length)
	assert.False(t, chunked)
	assert.Equal(t, "hello", body)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "detail string", status: http.StatusNotFound, body: `{"detail":"bucket not found"}`, wantMsg: "bucket not found"},
		{name: "message", status: http.StatusForbidden, body: `{"message":"forbidden"}`, wantMsg: "forbidden"},
		{name: "plain body", status: http.StatusBadGateway, body: "upstream down", wantMsg: "upstream down"},
		{name: "empty body", status: http.StatusInternalServerError, body: "", wantMsg: "500 Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			resp, err := New(server.URL).R().Get("/")
			require.NoError(t, err)
			err = Check(resp)
			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
		})
	}
}
