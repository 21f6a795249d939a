package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xgui3783/ebrains-util/internal/logging"
	"go.uber.org/zap"
)

type Source string

const (
	SourceEnv               Source = "env"
	SourceFile              Source = "file"
	SourceClientCredentials Source = "client-credentials"
	SourceRefreshToken      Source = "refresh-token"
)

// DefaultOrder is the provider priority used when a Resolver has no Order.
var DefaultOrder = []Source{
	SourceEnv,
	SourceFile,
	SourceClientCredentials,
	SourceRefreshToken,
}

// ProviderFunc returns a raw token, or "" when its source has nothing to offer.
type ProviderFunc func(ctx context.Context) (string, error)

// Static provides a fixed value, typically read from the environment.
func Static(raw string) ProviderFunc {
	return func(context.Context) (string, error) {
		return raw, nil
	}
}

// Provider reads the cache file, treating a missing file as "nothing to offer".
func (c *Cache) Provider() ProviderFunc {
	return func(context.Context) (string, error) {
		raw, err := c.Read()
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return raw, err
	}
}

type Resolver struct {
	Cache     *Cache
	Providers map[Source]ProviderFunc
	Order     []Source
	Logger    *zap.Logger
	Now       func() time.Time
}

// Current returns the first unexpired token in provider order. Tokens from
// any source other than the cache file are written back to the cache.
//
// When every token found is expired, the first of them is returned together
// with ErrExpired. When nothing is found the error is ErrNotFound.
func (r *Resolver) Current(ctx context.Context) (*Token, error) {
	order := r.Order
	if len(order) == 0 {
		order = DefaultOrder
	}
	log := r.logger()

	var expired *Token
	for _, src := range order {
		fetch, ok := r.Providers[src]
		if !ok || fetch == nil {
			continue
		}
		raw, err := fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s token provider: %w", src, err)
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			log.Debug("token provider has no token", zap.String("source", string(src)))
			continue
		}
		tok, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%s token: %w", src, err)
		}
		if tok.ExpiredAt(r.now()) {
			log.Debug("token provider returned an expired token",
				zap.String("source", string(src)), zap.Time("expiry", tok.Expiry))
			if expired == nil {
				expired = tok
			}
			continue
		}
		if src != SourceFile && r.Cache != nil {
			if err := r.Cache.Set(tok.Raw); err != nil {
				return nil, err
			}
		}
		log.Debug("resolved token", zap.String("source", string(src)), zap.Time("expiry", tok.Expiry))
		return tok, nil
	}
	if expired != nil {
		return expired, ErrExpired
	}
	return nil, ErrNotFound
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) logger() *zap.Logger {
	return logging.OrNop(r.Logger)
}
