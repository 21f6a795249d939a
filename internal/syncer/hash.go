package syncer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond/v2"
	"github.com/xgui3783/ebrains-util/internal/db"
	"go.uber.org/zap"
)

type hashEntry struct {
	Size    int64  `json:"size"`
	ModTime int64  `json:"mtime"`
	MD5     string `json:"md5"`
}

// HashFile returns the hex md5 of the file at path, the digest the
// data-proxy reports for stored objects.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// hash returns the md5 of path, reusing the cached digest while size and
// modification time are unchanged.
func (e *Engine) hash(path string, info os.FileInfo) (string, error) {
	key := []byte(path)
	if e.Store != nil {
		raw, err := e.Store.Get(db.HashBucket, key)
		if err != nil {
			return "", err
		}
		var cached hashEntry
		if raw != nil && json.Unmarshal(raw, &cached) == nil &&
			cached.Size == info.Size() && cached.ModTime == info.ModTime().UnixNano() {
			return cached.MD5, nil
		}
	}

	sum, err := HashFile(path)
	if err != nil {
		return "", err
	}
	if e.Store != nil {
		raw, _ := json.Marshal(hashEntry{Size: info.Size(), ModTime: info.ModTime().UnixNano(), MD5: sum})
		if err := e.Store.Set(db.HashBucket, key, raw); err != nil {
			return "", err
		}
	}
	return sum, nil
}

// hashFiles hashes files on a worker pool and returns the digests keyed by
// slash separated relative path.
func (e *Engine) hashFiles(ctx context.Context, files []localFile) (map[string]string, error) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := pond.NewPool(workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	sums := make([]string, len(files))
	group := pool.NewGroup()
	for i, f := range files {
		group.SubmitErr(func() error {
			sum, err := e.hash(f.path, f.info)
			if err != nil {
				return err
			}
			sums[i] = sum
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(files))
	for i, f := range files {
		out[f.rel] = sums[i]
	}
	e.logger().Debug("hash pre-pass done", zap.Int("files", len(out)), zap.Int("workers", workers))
	return out, nil
}

type localFile struct {
	path string
	rel  string
	info os.FileInfo
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
