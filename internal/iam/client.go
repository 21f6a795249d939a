package iam

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/xgui3783/ebrains-util/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultClientID is the public client used for the device flow.
const DefaultClientID = "siibra"

type Client struct {
	// IssuerURL is the realm URL, e.g. https://iam.ebrains.eu/auth/realms/hbp.
	IssuerURL  string
	HTTPClient *http.Client
	Logger     *zap.Logger
	// Out receives the device flow instructions. Defaults to stderr.
	Out io.Writer
}

func NewClient(issuerURL string, logger *zap.Logger) *Client {
	return &Client{IssuerURL: issuerURL, Logger: logger}
}

func (c *Client) Endpoint() oauth2.Endpoint {
	base := strings.TrimRight(c.IssuerURL, "/") + "/protocol/openid-connect"
	return oauth2.Endpoint{
		AuthURL:       base + "/auth",
		DeviceAuthURL: base + "/auth/device",
		TokenURL:      base + "/token",
		AuthStyle:     oauth2.AuthStyleInParams,
	}
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	if c.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient)
}

func (c *Client) out() io.Writer {
	if c.Out == nil {
		return os.Stderr
	}
	return c.Out
}

func (c *Client) logger() *zap.Logger {
	return logging.OrNop(c.Logger)
}

// DeviceFlow runs the device authorization grant and blocks until the user
// approves the request in a browser or the device code expires.
func (c *Client) DeviceFlow(ctx context.Context, clientID string, scopes []string) (string, error) {
	if clientID == "" {
		clientID = DefaultClientID
	}
	ctx = c.withHTTPClient(ctx)
	cfg := &oauth2.Config{
		ClientID: clientID,
		Endpoint: c.Endpoint(),
		Scopes:   withOpenID(scopes),
	}
	c.logger().Debug("starting device flow", zap.String("client_id", clientID), zap.Strings("scopes", cfg.Scopes))

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("device authorization failed: %w", err)
	}
	_, _ = fmt.Fprintf(c.out(), "Visit %s and enter code: %s\n", resp.VerificationURI, resp.UserCode)
	if resp.VerificationURIComplete != "" {
		_, _ = fmt.Fprintf(c.out(), "Or open %s\n", resp.VerificationURIComplete)
	}

	tok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return "", fmt.Errorf("device token failed: %w", err)
	}
	return tok.AccessToken, nil
}

func (c *Client) ClientCredentials(ctx context.Context, clientID, clientSecret string, scopes []string) (string, error) {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     c.Endpoint().TokenURL,
		Scopes:       scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	c.logger().Debug("requesting client credentials token", zap.String("client_id", clientID))
	tok, err := cc.Token(c.withHTTPClient(ctx))
	if err != nil {
		return "", fmt.Errorf("client credentials token failed: %w", err)
	}
	return tok.AccessToken, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken, clientID, clientSecret string) (string, error) {
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     c.Endpoint(),
	}
	c.logger().Debug("refreshing token", zap.String("client_id", clientID))
	src := cfg.TokenSource(c.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	return tok.AccessToken, nil
}

// Acquire picks the grant for an explicit login: client credentials when both
// id and secret are given, otherwise the device flow.
func (c *Client) Acquire(ctx context.Context, clientID, clientSecret string, scopes []string) (string, error) {
	if clientID != "" && clientSecret != "" {
		return c.ClientCredentials(ctx, clientID, clientSecret, scopes)
	}
	return c.DeviceFlow(ctx, clientID, scopes)
}

func withOpenID(scopes []string) []string {
	out := []string{"openid"}
	for _, s := range scopes {
		if s != "openid" {
			out = append(out, s)
		}
	}
	return out
}
