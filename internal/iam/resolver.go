package iam

import (
	"context"
	"errors"
	"strings"

	"github.com/xgui3783/ebrains-util/internal/config"
	"github.com/xgui3783/ebrains-util/internal/token"
	"go.uber.org/zap"
)

// Providers maps every token source to its implementation for cfg. Sources
// whose inputs are not configured yield no token.
func (c *Client) Providers(cfg *config.Config, cache *token.Cache) map[token.Source]token.ProviderFunc {
	return map[token.Source]token.ProviderFunc{
		token.SourceEnv:  token.Static(string(cfg.AuthToken)),
		token.SourceFile: cache.Provider(),
		token.SourceClientCredentials: func(ctx context.Context) (string, error) {
			if cfg.ClientID == "" || cfg.ClientSecret == "" {
				return "", nil
			}
			return c.ClientCredentials(ctx, cfg.ClientID, string(cfg.ClientSecret), cfg.Scopes())
		},
		token.SourceRefreshToken: func(ctx context.Context) (string, error) {
			if cfg.RefreshToken == "" || cfg.ClientID == "" {
				return "", nil
			}
			return c.Refresh(ctx, string(cfg.RefreshToken), cfg.ClientID, string(cfg.ClientSecret))
		},
	}
}

func NewResolver(cfg *config.Config, client *Client, logger *zap.Logger) *token.Resolver {
	cache := token.NewCache(cfg.TokenPath())
	return &token.Resolver{
		Cache:     cache,
		Providers: client.Providers(cfg, cache),
		Order:     token.DefaultOrder,
		Logger:    logger,
	}
}

// ParseScopes splits a comma separated --scope value, dropping empty entries.
func ParseScopes(s string) []string {
	var scopes []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			scopes = append(scopes, part)
		}
	}
	return scopes
}

// Reusable resolves the current token and reports which of the requested
// scopes it lacks. A missing or expired token yields a nil token and no error.
func Reusable(ctx context.Context, r *token.Resolver, scopes []string) (*token.Token, []string, error) {
	tok, err := r.Current(ctx)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) || errors.Is(err, token.ErrExpired) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return tok, tok.MissingScopes(scopes), nil
}
