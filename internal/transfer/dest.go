// Package transfer holds the local side of bucket transfers: destination
// resolution, atomic promotion of downloads, upload headers and progress
// reporting readers.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrDestExists = errors.New("destination already exists")

// DestFile resolves where a download of filename into dest should land.
//
// An existing directory receives the file under its base name. An existing
// file is a conflict unless force is set. A dest ending in a path separator
// is created as a directory. An empty dest means the working directory.
func DestFile(filename, dest string, force bool) (string, error) {
	if dest == "" {
		dest = "."
	}
	base := filepath.Base(filepath.FromSlash(filename))

	info, err := os.Stat(dest)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(dest, base), nil
	case err == nil:
		if force {
			return dest, nil
		}
		return "", fmt.Errorf("%w: %s", ErrDestExists, dest)
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	if strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(os.PathSeparator)) {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dest, err)
		}
		return filepath.Join(dest, base), nil
	}
	return dest, nil
}

// TempPath is the sibling a download is staged in before promotion.
func TempPath(dest string) string {
	return filepath.Join(filepath.Dir(dest), "tmp_"+filepath.Base(dest))
}

// WriteAtomic stages src in TempPath(dest) and promotes it to dest once fully
// written. The staging file is removed on every path.
func WriteAtomic(dest string, src io.Reader) (n int64, err error) {
	tmp := TempPath(dest)
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}()

	if n, err = io.Copy(f, src); err != nil {
		return n, err
	}
	if err = f.Close(); err != nil {
		return n, err
	}
	return n, promote(tmp, dest)
}

func promote(tmp, dest string) error {
	if err := os.Rename(tmp, dest); err == nil {
		return nil
	}
	// Rename fails across devices and over some existing targets.
	in, err := os.Open(tmp)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
