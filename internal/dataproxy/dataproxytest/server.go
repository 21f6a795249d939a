// Package dataproxytest is an in-memory data-proxy for tests.
package dataproxytest

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type Object struct {
	Data    []byte
	Headers http.Header
}

type Server struct {
	*httptest.Server

	// Token, when set, is required on write requests.
	Token string

	mu      sync.Mutex
	buckets map[string]map[string]*Object
	auth    []string
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{buckets: map[string]map[string]*Object{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/buckets/", s.api)
	mux.HandleFunc("/blob/", s.blob)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// CreateBucket registers an empty bucket.
func (s *Server) CreateBucket(bucket string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = map[string]*Object{}
	}
}

// Put seeds an object.
func (s *Server) Put(bucket, name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = map[string]*Object{}
	}
	s.buckets[bucket][name] = &Object{Data: data, Headers: http.Header{}}
}

func (s *Server) Get(bucket, name string) (*Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.buckets[bucket][name]
	return o, ok
}

// Authorizations returns the Authorization header of every API call.
func (s *Server) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

func (s *Server) api(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.mu.Unlock()

	rest := strings.TrimPrefix(r.URL.Path, "/v1/buckets/")
	bucket, name, _ := strings.Cut(rest, "/")

	switch {
	case name == "" && r.Method == http.MethodGet:
		s.list(w, r, bucket)
	case r.Method == http.MethodGet:
		if _, ok := s.Get(bucket, name); !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "object not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": s.URL + "/blob/" + bucket + "/" + name})
	case r.Method == http.MethodPut:
		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": s.URL + "/blob/" + bucket + "/" + name + "?temp_url_sig=abc"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, bucket string) {
	q := r.URL.Query()
	prefix, marker := q.Get("prefix"), q.Get("marker")
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 1000
	}

	s.mu.Lock()
	objects, ok := s.buckets[bucket]
	var names []string
	for name := range objects {
		if strings.HasPrefix(name, prefix) && name > marker {
			names = append(names, name)
		}
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "bucket not found"})
		return
	}

	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	page := make([]map[string]any, 0, len(names))
	for _, name := range names {
		o, _ := s.Get(bucket, name)
		page = append(page, map[string]any{
			"name":  name,
			"bytes": len(o.Data),
			"hash":  md5Hex(o.Data),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"objects": page})
}

func (s *Server) blob(w http.ResponseWriter, r *http.Request) {
	bucket, name, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/blob/"), "/")
	switch r.Method {
	case http.MethodGet:
		o, ok := s.Get(bucket, name)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(o.Data)))
		_, _ = w.Write(o.Data)
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Put(bucket, name, data)
		s.mu.Lock()
		s.buckets[bucket][name].Headers = r.Header.Clone()
		s.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
