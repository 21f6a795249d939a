// Package iam talks to the EBRAINS identity provider (a Keycloak realm):
// device authorization, client credentials and refresh token grants, plus the
// wiring that turns configuration into an ordered token resolver.
package iam
