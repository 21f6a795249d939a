package iam

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xgui3783/ebrains-util/internal/iam/iamtest"
	"github.com/xgui3783/ebrains-util/internal/token/tokentest"
)

func TestEndpoint(t *testing.T) {
	c := NewClient("https://iam.example.org/auth/realms/hbp/", nil)
	ep := c.Endpoint()
	assert.Equal(t, "https://iam.example.org/auth/realms/hbp/protocol/openid-connect/auth/device", ep.DeviceAuthURL)
	assert.Equal(t, "https://iam.example.org/auth/realms/hbp/protocol/openid-connect/token", ep.TokenURL)
}

func TestClientCredentials(t *testing.T) {
	raw := tokentest.Valid("team")
	srv := iamtest.NewServer(t, raw)
	srv.ClientID, srv.ClientSecret = "robot", "s3cret"

	c := NewClient(srv.IssuerURL(), nil)
	got, err := c.ClientCredentials(context.Background(), "robot", "s3cret", []string{"team"})
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "client_credentials", reqs[0].Form["grant_type"])
	assert.Equal(t, "team", reqs[0].Form["scope"])
}

func TestClientCredentialsRejected(t *testing.T) {
	srv := iamtest.NewServer(t, tokentest.Valid())
	srv.ClientID, srv.ClientSecret = "robot", "s3cret"

	c := NewClient(srv.IssuerURL(), nil)
	_, err := c.ClientCredentials(context.Background(), "robot", "wrong", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client credentials token failed")
}

func TestRefresh(t *testing.T) {
	raw := tokentest.Valid()
	srv := iamtest.NewServer(t, raw)
	srv.RefreshToken = "refresh-me"

	c := NewClient(srv.IssuerURL(), nil)
	got, err := c.Refresh(context.Background(), "refresh-me", "siibra", "")
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = c.Refresh(context.Background(), "stale", "siibra", "")
	require.Error(t, err)
}

func TestDeviceFlow(t *testing.T) {
	raw := tokentest.Valid("openid", "collab.drive")
	srv := iamtest.NewServer(t, raw)

	var out bytes.Buffer
	c := NewClient(srv.IssuerURL(), nil)
	c.Out = &out

	got, err := c.DeviceFlow(context.Background(), "", []string{"collab.drive"})
	require.NoError(t, err)
	assert.Equal(t, raw, got)
	assert.Contains(t, out.String(), "ABCD-EFGH")
	assert.Contains(t, out.String(), srv.URL+"/device")

	reqs := srv.Requests()
	require.GreaterOrEqual(t, len(reqs), 2)
	assert.Equal(t, DefaultClientID, reqs[0].Form["client_id"])
	assert.Equal(t, "openid collab.drive", reqs[0].Form["scope"])
}

func TestAcquirePicksGrant(t *testing.T) {
	raw := tokentest.Valid()
	srv := iamtest.NewServer(t, raw)
	srv.ClientID, srv.ClientSecret = "robot", "s3cret"

	c := NewClient(srv.IssuerURL(), nil)
	c.Out = &bytes.Buffer{}
	_, err := c.Acquire(context.Background(), "robot", "s3cret", nil)
	require.NoError(t, err)
	assert.Equal(t, "client_credentials", srv.Requests()[0].Form["grant_type"])
}

func TestWithOpenID(t *testing.T) {
	assert.Equal(t, []string{"openid"}, withOpenID(nil))
	assert.Equal(t, []string{"openid", "team"}, withOpenID([]string{"openid", "team"}))
}
