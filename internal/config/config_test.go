package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func setUserPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("EBRAINS_UTIL_USER_PATH", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := setUserPath(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.UserPath)
	assert.Equal(t, filepath.Join(dir, "auth_token"), cfg.TokenPath())
	assert.Equal(t, filepath.Join(dir, "ebrains.db"), cfg.DBPath())
	assert.Equal(t, DefaultIAMURL, cfg.IAMURL)
	assert.Equal(t, DefaultDataProxyURL, cfg.DataProxyURL)
	assert.Equal(t, DefaultCollabURL, cfg.CollabURL)
	assert.Empty(t, cfg.AuthToken)
	assert.False(t, cfg.Verbose)
}

func TestLoadFromEnv(t *testing.T) {
	setUserPath(t)
	t.Setenv("EBRAINS_UTIL_AUTH_TOKEN", "a.b.c")
	t.Setenv("EBRAINS_UTIL_CLIENT_ID", "my-client")
	t.Setenv("EBRAINS_UTIL_CLIENT_SECRET", "plain-secret")
	t.Setenv("EBRAINS_UTIL_TOKEN_SCOPE", "openid team")
	t.Setenv("EBRAINS_UTIL_VERBOSE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", string(cfg.AuthToken))
	assert.Equal(t, "my-client", cfg.ClientID)
	assert.Equal(t, EncryptedString("plain-secret"), cfg.ClientSecret)
	assert.Equal(t, []string{"openid", "team"}, cfg.Scopes())
	assert.True(t, cfg.Verbose)
}

func TestSetWritesEncryptedSecret(t *testing.T) {
	keyring.MockInit()
	dir := setUserPath(t)

	require.NoError(t, Set("client-secret", "top-secret"))
	require.NoError(t, Set("client_id", "svc"))

	content, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "top-secret")
	assert.Contains(t, string(content), "BEGIN AGE ENCRYPTED FILE")
	assert.Contains(t, string(content), "svc")
	assert.False(t, strings.Contains(string(content), "iam_url"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EncryptedString("top-secret"), cfg.ClientSecret)
	assert.Equal(t, "svc", cfg.ClientID)

	value, err := cfg.Get("client-secret")
	require.NoError(t, err)
	assert.Equal(t, "top-secret", value)
}

func TestSecretKeysDecryptOnLoad(t *testing.T) {
	keyring.MockInit()
	dir := setUserPath(t)

	for _, key := range secretKeys {
		t.Setenv("EBRAINS_UTIL_"+strings.ToUpper(key), "")
		require.NoError(t, Set(key, "value-of-"+key))
	}

	content, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	cfg, err := Load()
	require.NoError(t, err)
	for _, key := range secretKeys {
		assert.NotContains(t, string(content), "value-of-"+key)
		value, err := cfg.Get(key)
		require.NoError(t, err)
		assert.Equal(t, "value-of-"+key, value, key)
	}
	assert.Equal(t, EncryptedString("value-of-auth_token"), cfg.AuthToken)
}

func TestEnvOverridesFile(t *testing.T) {
	setUserPath(t)
	require.NoError(t, Set("data-proxy-url", "https://file.example"))
	t.Setenv("EBRAINS_UTIL_DATA_PROXY_URL", "https://env.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", cfg.DataProxyURL)
}

func TestNormalizeKey(t *testing.T) {
	k, err := NormalizeKey("Client-ID")
	require.NoError(t, err)
	assert.Equal(t, "client_id", k)

	_, err = NormalizeKey("caching")
	require.ErrorIs(t, err, ErrUnknownKey)
	require.ErrorIs(t, Set("caching", "true"), ErrUnknownKey)
}

func TestUserPathDefault(t *testing.T) {
	t.Setenv("EBRAINS_UTIL_USER_PATH", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := UserPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ebrains_util"), p)
}
