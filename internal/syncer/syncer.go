// Package syncer mirrors a local file or directory into a data-proxy bucket,
// uploading only what differs from the remote copy.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/viant/afs"
	"github.com/xgui3783/ebrains-util/internal/dataproxy"
	"github.com/xgui3783/ebrains-util/internal/db"
	"github.com/xgui3783/ebrains-util/internal/logging"
	"go.uber.org/zap"
)

// TokenEnv is consulted when no token is passed in Options.
const TokenEnv = "AUTH_TOKEN"

var ErrNoToken = errors.New("sync requires a token")

type Options struct {
	// Hash runs the parallel hash pre-pass over the source before comparing.
	Hash  bool
	Token string
}

type Engine struct {
	DataProxyURL string
	FS           afs.Service
	Store        *db.Store
	Logger       *zap.Logger
	Workers      int
	// OnUpload is called after each uploaded object.
	OnUpload func(name string, size int64)
}

func NewEngine(dataProxyURL string, store *db.Store, logger *zap.Logger) *Engine {
	return &Engine{
		DataProxyURL: dataProxyURL,
		FS:           afs.New(),
		Store:        store,
		Logger:       logger,
	}
}

type Result struct {
	Uploaded []string
	Skipped  int
}

// Sync uploads src (a file or directory) to dst inside bucket. A dst of "."
// is the bucket root.
func (e *Engine) Sync(ctx context.Context, bucket, src, dst string, opts Options) (*Result, error) {
	tok := opts.Token
	if tok == "" {
		tok = os.Getenv(TokenEnv)
	}
	if tok == "" {
		return nil, ErrNoToken
	}

	root, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	var files []localFile
	prefix := remotePrefix(dst)
	if info.IsDir() {
		if files, err = e.localFiles(ctx, root); err != nil {
			return nil, err
		}
		if opts.Hash {
			if _, err := e.hashFiles(ctx, files); err != nil {
				return nil, fmt.Errorf("hash pre-pass failed: %w", err)
			}
		}
	} else {
		files = []localFile{{path: root, rel: fileTarget(filepath.Base(root), dst), info: info}}
		prefix = ""
	}

	remote := dataproxy.New(e.DataProxyURL, tok, e.Logger).Bucket(bucket)
	objects, err := remote.List(ctx, listPrefix(prefix, files))
	if err != nil {
		return nil, err
	}
	existing := make(map[string]dataproxy.Object, len(objects))
	for _, o := range objects {
		existing[o.Name] = o
	}

	log := e.logger()
	result := &Result{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		name := path.Join(prefix, f.rel)
		changed, err := e.changed(f, existing[name])
		if err != nil {
			return result, err
		}
		if !changed {
			log.Debug("unchanged", zap.String("object", name))
			result.Skipped++
			continue
		}
		if err := e.upload(ctx, remote, f, name); err != nil {
			return result, err
		}
		result.Uploaded = append(result.Uploaded, name)
	}
	return result, nil
}

func (e *Engine) changed(f localFile, remote dataproxy.Object) (bool, error) {
	if remote.Name == "" {
		return true, nil
	}
	if remote.Bytes != f.info.Size() {
		return true, nil
	}
	if remote.Hash == "" {
		return false, nil
	}
	sum, err := e.hash(f.path, f.info)
	if err != nil {
		return false, err
	}
	return !strings.EqualFold(sum, remote.Hash), nil
}

func (e *Engine) upload(ctx context.Context, remote *dataproxy.Bucket, f localFile, name string) error {
	fh, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer fh.Close()

	if err := remote.Upload(ctx, name, fh, f.info.Size(), nil); err != nil {
		return err
	}
	if e.OnUpload != nil {
		e.OnUpload(name, f.info.Size())
	}
	return nil
}

// localFiles walks root and returns its regular files sorted by relative path.
func (e *Engine) localFiles(ctx context.Context, root string) ([]localFile, error) {
	fs := e.FS
	if fs == nil {
		fs = afs.New()
	}
	var files []localFile
	err := fs.Walk(ctx, root, func(ctx context.Context, baseURL string, parent string, info os.FileInfo, _ io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		p := filepath.Join(root, filepath.FromSlash(parent), info.Name())
		st, err := os.Lstat(p)
		if err != nil {
			return false, err
		}
		if st.Mode().IsRegular() {
			files = append(files, localFile{path: p, rel: relSlash(root, p), info: st})
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	slices.SortFunc(files, func(a, b localFile) int { return strings.Compare(a.rel, b.rel) })
	return files, nil
}

func (e *Engine) logger() *zap.Logger {
	return logging.OrNop(e.Logger)
}

func remotePrefix(dst string) string {
	dst = strings.Trim(path.Clean("/"+filepath.ToSlash(dst)), "/")
	return dst
}

// fileTarget is the object name for a single file synced to dst.
func fileTarget(base, dst string) string {
	if dst == "" || dst == "." || strings.HasSuffix(dst, "/") {
		return path.Join(remotePrefix(dst), base)
	}
	return remotePrefix(dst)
}

func listPrefix(prefix string, files []localFile) string {
	if prefix != "" {
		return prefix + "/"
	}
	if len(files) == 1 {
		return files[0].rel
	}
	return ""
}
