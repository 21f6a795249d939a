// Package tokentest builds unsigned JWT strings for tests.
package tokentest

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// New returns a three segment token whose payload carries exp and a space
// separated scope claim.
func New(exp time.Time, scopes ...string) string {
	return WithClaims(map[string]any{
		"exp":   exp.Unix(),
		"scope": strings.Join(scopes, " "),
		"sub":   "test-user",
	})
}

func WithClaims(claims map[string]any) string {
	header, _ := json.Marshal(map[string]any{"alg": "RS256", "typ": "JWT"})
	payload, _ := json.Marshal(claims)
	return base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + ".c2lnbmF0dXJl"
}

// Valid expires in an hour.
func Valid(scopes ...string) string {
	return New(time.Now().Add(time.Hour), scopes...)
}

// Expired expired a minute ago.
func Expired(scopes ...string) string {
	return New(time.Now().Add(-time.Minute), scopes...)
}

// FromJSON encodes header and payload verbatim, so key order and spacing
// survive into the token.
func FromJSON(header, payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(header)) + "." +
		base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".c2lnbmF0dXJl"
}
