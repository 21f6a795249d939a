package token

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Cache stores a single raw token in a file. Access is not locked; the last
// writer wins.
type Cache struct {
	Path string
}

func NewCache(path string) *Cache {
	return &Cache{Path: path}
}

func (c *Cache) Read() (string, error) {
	content, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	raw := strings.TrimSpace(string(content))
	if raw == "" {
		return "", ErrNotFound
	}
	return raw, nil
}

func (c *Cache) Set(raw string) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	if err := os.WriteFile(c.Path, []byte(raw), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return os.Chmod(c.Path, 0o600)
}

// Delete removes the cache file. A missing file is not an error.
func (c *Cache) Delete() error {
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
