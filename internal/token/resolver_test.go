package token

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xgui3783/ebrains-util/internal/token/tokentest"
)

func TestDefaultOrder(t *testing.T) {
	assert.Equal(t, []Source{
		SourceEnv,
		SourceFile,
		SourceClientCredentials,
		SourceRefreshToken,
	}, DefaultOrder)
}

func newTestResolver(t *testing.T, providers map[Source]ProviderFunc) *Resolver {
	t.Helper()
	return &Resolver{
		Cache:     NewCache(filepath.Join(t.TempDir(), "auth_token")),
		Providers: providers,
	}
}

func TestResolverNothingFound(t *testing.T) {
	r := newTestResolver(t, map[Source]ProviderFunc{
		SourceEnv: Static(""),
	})
	r.Providers[SourceFile] = r.Cache.Provider()

	_, err := r.Current(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolverFirstValidWins(t *testing.T) {
	envToken := tokentest.Valid("env")
	var calls []Source
	track := func(src Source, raw string) ProviderFunc {
		return func(context.Context) (string, error) {
			calls = append(calls, src)
			return raw, nil
		}
	}
	r := newTestResolver(t, map[Source]ProviderFunc{
		SourceEnv:               track(SourceEnv, envToken),
		SourceClientCredentials: track(SourceClientCredentials, tokentest.Valid("cc")),
	})

	tok, err := r.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, envToken, tok.Raw)
	assert.Equal(t, []Source{SourceEnv}, calls)

	cached, err := r.Cache.Read()
	require.NoError(t, err)
	assert.Equal(t, envToken, cached)
}

func TestResolverSkipsExpired(t *testing.T) {
	fileToken := tokentest.Expired("file")
	ccToken := tokentest.Valid("cc")
	r := newTestResolver(t, map[Source]ProviderFunc{
		SourceClientCredentials: Static(ccToken),
	})
	require.NoError(t, r.Cache.Set(fileToken))
	r.Providers[SourceFile] = r.Cache.Provider()

	tok, err := r.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ccToken, tok.Raw)

	cached, err := r.Cache.Read()
	require.NoError(t, err)
	assert.Equal(t, ccToken, cached)
}

func TestResolverOnlyExpired(t *testing.T) {
	fileToken := tokentest.Expired()
	r := newTestResolver(t, map[Source]ProviderFunc{})
	require.NoError(t, r.Cache.Set(fileToken))
	r.Providers[SourceFile] = r.Cache.Provider()

	tok, err := r.Current(context.Background())
	require.ErrorIs(t, err, ErrExpired)
	require.NotNil(t, tok)
	assert.Equal(t, fileToken, tok.Raw)
}

func TestResolverFileTokenNotRewritten(t *testing.T) {
	fileToken := tokentest.Valid()
	r := newTestResolver(t, map[Source]ProviderFunc{})
	require.NoError(t, r.Cache.Set(fileToken+"\n"))
	r.Providers[SourceFile] = r.Cache.Provider()

	tok, err := r.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fileToken, tok.Raw)
}

func TestResolverMalformedIsFatal(t *testing.T) {
	r := newTestResolver(t, map[Source]ProviderFunc{
		SourceEnv:  Static("not-a-jwt"),
		SourceFile: Static(tokentest.Valid()),
	})

	_, err := r.Current(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolverProviderError(t *testing.T) {
	boom := errors.New("boom")
	r := newTestResolver(t, map[Source]ProviderFunc{
		SourceClientCredentials: func(context.Context) (string, error) { return "", boom },
	})

	_, err := r.Current(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "client-credentials")
}

func TestResolverCustomOrder(t *testing.T) {
	refreshToken := tokentest.Valid("refresh")
	r := newTestResolver(t, map[Source]ProviderFunc{
		SourceEnv:          Static(tokentest.Valid("env")),
		SourceRefreshToken: Static(refreshToken),
	})
	r.Order = []Source{SourceRefreshToken, SourceEnv}

	tok, err := r.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, refreshToken, tok.Raw)
}
