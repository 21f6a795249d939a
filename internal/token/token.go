package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotFound = errors.New("token not found")
	ErrExpired  = errors.New("token expired")
)

type Token struct {
	Raw    string
	Expiry time.Time
	Scopes []string
}

// Parse decodes raw without verifying its signature. The payload must carry
// a numeric exp claim; scope is optional.
func Parse(raw string) (*Token, error) {
	raw = strings.TrimSpace(raw)
	_, claims, _, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", jwt.ErrTokenInvalidClaims, err)
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: missing exp claim", jwt.ErrTokenInvalidClaims)
	}
	scope, _ := claims["scope"].(string)
	return &Token{
		Raw:    raw,
		Expiry: exp.Time,
		Scopes: strings.Fields(scope),
	}, nil
}

// Decode splits raw into its header and payload JSON objects and the
// untouched signature segment. Numbers keep their literal form.
func Decode(raw string) (map[string]any, jwt.MapClaims, string, error) {
	headerJSON, payloadJSON, signature, err := Segments(raw)
	if err != nil {
		return nil, nil, "", err
	}

	header := map[string]any{}
	if err := unmarshalNumbers(headerJSON, &header); err != nil {
		return nil, nil, "", fmt.Errorf("%w: header: %w", jwt.ErrTokenMalformed, err)
	}
	claims := jwt.MapClaims{}
	if err := unmarshalNumbers(payloadJSON, &claims); err != nil {
		return nil, nil, "", fmt.Errorf("%w: payload: %w", jwt.ErrTokenMalformed, err)
	}
	return header, claims, signature, nil
}

// Segments returns the decoded header and payload JSON exactly as encoded in
// raw, keys in their original order, plus the signature segment.
func Segments(raw string) (header, payload []byte, signature string, err error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, nil, "", fmt.Errorf("%w: token contains %d segments, want 3", jwt.ErrTokenMalformed, len(parts))
	}
	if header, err = decodeSegment(parts[0]); err != nil {
		return nil, nil, "", fmt.Errorf("%w: header: %w", jwt.ErrTokenMalformed, err)
	}
	if payload, err = decodeSegment(parts[1]); err != nil {
		return nil, nil, "", fmt.Errorf("%w: payload: %w", jwt.ErrTokenMalformed, err)
	}
	return header, payload, parts[2], nil
}

func unmarshalNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// decodeSegment accepts the URL and standard base64 alphabets, with or
// without padding.
func decodeSegment(seg string) ([]byte, error) {
	seg = strings.TrimRight(seg, "=")
	if data, err := base64.RawURLEncoding.DecodeString(seg); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(seg)
}

func (t *Token) IsExpired() bool {
	return t.ExpiredAt(time.Now())
}

// ExpiredAt reports whether exp lies strictly before now. There is no grace period.
func (t *Token) ExpiredAt(now time.Time) bool {
	return t.Expiry.Before(now)
}

// MissingScopes returns the requested scopes the token does not carry, in
// request order.
func (t *Token) MissingScopes(requested []string) []string {
	var missing []string
	for _, s := range requested {
		if !slices.Contains(t.Scopes, s) {
			missing = append(missing, s)
		}
	}
	return missing
}
