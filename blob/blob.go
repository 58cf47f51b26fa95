// Package blob reads and writes ledger files in a bucket, a directory of an
// afero file system.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/etnz/ledger"
	"github.com/spf13/afero"
)

// ErrInvalidKey is returned for keys that escape the bucket.
var ErrInvalidKey = errors.New("invalid blob key")

// Bucket is a ledger.Blobs rooted in a directory.
type Bucket struct {
	fs afero.Fs
}

var _ ledger.Blobs = (*Bucket)(nil)

// NewBucket returns a Bucket on the OS directory dir.
func NewBucket(dir string) *Bucket {
	return NewBucketFs(afero.NewOsFs(), dir)
}

// NewBucketFs returns a Bucket on the directory dir of fsys.
func NewBucketFs(fsys afero.Fs, dir string) *Bucket {
	if dir == "" || dir == "." {
		return &Bucket{fs: fsys}
	}
	return &Bucket{fs: afero.NewBasePathFs(fsys, dir)}
}

func clean(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	p := path.Clean("/" + key)
	if p == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return p, nil
}

// Get returns the content of the object key.
func (b *Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := clean(key)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(b.fs, p)
}

// Put writes data as the object key, creating intermediate directories.
func (b *Bucket) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := clean(key)
	if err != nil {
		return err
	}
	if err := b.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(b.fs, p, data, 0o644)
}

// List returns the keys of the objects whose name ends with suffix, sorted.
func (b *Bucket) List(ctx context.Context, suffix string) ([]string, error) {
	var keys []string
	err := afero.Walk(b.fs, "/", func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(p, suffix) {
			return nil
		}
		keys = append(keys, strings.TrimPrefix(p, "/"))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
