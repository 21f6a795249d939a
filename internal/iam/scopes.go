package iam

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xgui3783/ebrains-util/internal/token"
)

var ErrMissingScopes = errors.New("token is missing required scopes")

// RequireScopes fails with ErrMissingScopes naming every absent scope.
func RequireScopes(tok *token.Token, scopes ...string) error {
	if missing := tok.MissingScopes(scopes); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingScopes, strings.Join(missing, ", "))
	}
	return nil
}
