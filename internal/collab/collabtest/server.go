// Package collabtest fakes the collab REST API.
package collabtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type Server struct {
	*httptest.Server

	mu      sync.Mutex
	collabs map[string]map[string]string // collab -> user -> role
}

func NewServer(t *testing.T, collabs ...string) *Server {
	t.Helper()
	s := &Server{collabs: map[string]map[string]string{}}
	for _, c := range collabs {
		s.collabs[c] = map[string]string{}
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Role returns the role user holds in collab, or "".
func (s *Server) Role(collab, user string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collabs[collab][user]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing token"})
		return
	}
	// /collabs/{id}[/team/{role}/users/{user}]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "collabs" {
		http.NotFound(w, r)
		return
	}
	id := parts[1]

	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.collabs[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "collab not found"})
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"name": id, "title": strings.ToUpper(id), "isPublic": false})
	case len(parts) == 6 && parts[2] == "team" && parts[4] == "users":
		role, user := parts[3], parts[5]
		switch r.Method {
		case http.MethodPut:
			team[user] = role
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			if team[user] != role {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not in team"})
				return
			}
			delete(team, user)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
