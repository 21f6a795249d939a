// Package iamtest runs a fake Keycloak token endpoint for tests.
package iamtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const RealmPath = "/auth/realms/hbp"

// Server answers the device authorization, client credentials and refresh
// token grants with AccessToken.
type Server struct {
	*httptest.Server

	AccessToken  string
	ClientID     string
	ClientSecret string
	RefreshToken string
	// PendingPolls is how many device token polls answer authorization_pending.
	PendingPolls int

	mu       sync.Mutex
	requests []Request
}

type Request struct {
	Path string
	Form map[string]string
}

func NewServer(t *testing.T, accessToken string) *Server {
	t.Helper()
	s := &Server{AccessToken: accessToken}
	mux := http.NewServeMux()
	mux.HandleFunc(RealmPath+"/protocol/openid-connect/auth/device", s.device)
	mux.HandleFunc(RealmPath+"/protocol/openid-connect/token", s.token)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// IssuerURL is the realm URL to configure clients with.
func (s *Server) IssuerURL() string {
	return s.URL + RealmPath
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) record(r *http.Request) map[string]string {
	_ = r.ParseForm()
	form := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	if id, secret, ok := r.BasicAuth(); ok {
		form["client_id"], form["client_secret"] = id, secret
	}
	s.mu.Lock()
	s.requests = append(s.requests, Request{Path: r.URL.Path, Form: form})
	s.mu.Unlock()
	return form
}

func (s *Server) device(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"device_code":               "device-123",
		"user_code":                 "ABCD-EFGH",
		"verification_uri":          s.URL + "/device",
		"verification_uri_complete": s.URL + "/device?user_code=ABCD-EFGH",
		"expires_in":                60,
		"interval":                  1,
	})
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	form := s.record(r)
	switch form["grant_type"] {
	case "urn:ietf:params:oauth:grant-type:device_code":
		s.mu.Lock()
		pending := s.PendingPolls > 0
		if pending {
			s.PendingPolls--
		}
		s.mu.Unlock()
		if pending {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "authorization_pending"})
			return
		}
	case "client_credentials":
		if form["client_id"] != s.ClientID || form["client_secret"] != s.ClientSecret {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid_client"})
			return
		}
	case "refresh_token":
		if form["refresh_token"] != s.RefreshToken {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": s.AccessToken,
		"token_type":   "bearer",
		"expires_in":   300,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
