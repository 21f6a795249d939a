// Package collab manages team membership of EBRAINS collabs.
package collab

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/xgui3783/ebrains-util/internal/api"
	"github.com/xgui3783/ebrains-util/internal/logging"
	"go.uber.org/zap"
)

type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleViewer        Role = "viewer"
)

var Roles = []Role{RoleAdministrator, RoleEditor, RoleViewer}

// RequiredScopes must all be present on the token used for team changes.
var RequiredScopes = []string{"clb.wiki.read", "clb.wiki.write"}

var ErrInvalidRole = errors.New("invalid role")

// ParseRole accepts a role name case-insensitively. Empty means viewer.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleViewer, nil
	}
	r := Role(strings.ToLower(s))
	if !slices.Contains(Roles, r) {
		return "", fmt.Errorf("%w %q: must be one of administrator, editor, viewer", ErrInvalidRole, s)
	}
	return r, nil
}

type Collab struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Public      bool   `json:"isPublic"`
}

type Client struct {
	api    *resty.Client
	logger *zap.Logger
}

func New(baseURL, token string, logger *zap.Logger) *Client {
	logger = logging.OrNop(logger)
	return &Client{
		api:    api.New(strings.TrimRight(baseURL, "/"), api.WithToken(token), api.WithLogger(logger)),
		logger: logger,
	}
}

func (c *Client) Get(ctx context.Context, id string) (*Collab, error) {
	var collab Collab
	resp, err := c.api.R().
		SetContext(ctx).
		SetResult(&collab).
		Get("/collabs/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get collab %s: %w", id, err)
	}
	if err := api.Check(resp); err != nil {
		return nil, fmt.Errorf("failed to get collab %s: %w", id, err)
	}
	return &collab, nil
}

func teamPath(id string, role Role, user string) string {
	return "/collabs/" + url.PathEscape(id) + "/team/" + string(role) + "/users/" + url.PathEscape(user)
}

// AddTeam grants user the role in the collab. Service accounts are addressed
// as "service-account-<client id>".
func (c *Client) AddTeam(ctx context.Context, id, user string, role Role) error {
	resp, err := c.api.R().SetContext(ctx).Put(teamPath(id, role, user))
	if err != nil {
		return fmt.Errorf("failed to add %s to %s: %w", user, id, err)
	}
	if err := api.Check(resp); err != nil {
		return fmt.Errorf("failed to add %s to %s: %w", user, id, err)
	}
	c.logger.Debug("added team member", zap.String("collab", id), zap.String("user", user), zap.String("role", string(role)))
	return nil
}

func (c *Client) RemoveTeam(ctx context.Context, id, user string, role Role) error {
	resp, err := c.api.R().SetContext(ctx).Delete(teamPath(id, role, user))
	if err != nil {
		return fmt.Errorf("failed to remove %s from %s: %w", user, id, err)
	}
	if err := api.Check(resp); err != nil {
		return fmt.Errorf("failed to remove %s from %s: %w", user, id, err)
	}
	c.logger.Debug("removed team member", zap.String("collab", id), zap.String("user", user), zap.String("role", string(role)))
	return nil
}
