// Package token decodes, validates and caches the bearer token used against
// EBRAINS services, and resolves the current token from an ordered list of
// providers (environment, cache file, client credentials, refresh token).
package token
