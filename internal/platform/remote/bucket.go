package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Bucket is the object-storage half of the remote store. Upload overwrites
// an existing object with the same key and returns its stable public URL.
type Bucket interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// DiskBucket stores objects under a local directory and serves them from
// baseURL; the HTTP layer mounts root at /storage/.
type DiskBucket struct {
	root    string
	baseURL string
}

func NewDiskBucket(root, baseURL string) (*DiskBucket, error) {
	if !filepath.IsAbs(root) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = filepath.Join(cwd, root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: mkdir: %w", err)
	}
	return &DiskBucket{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory objects are written to.
func (d *DiskBucket) Root() string { return d.root }

func (d *DiskBucket) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	full := filepath.Join(d.root, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage/local: mkdir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("storage/local: create %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return "", fmt.Errorf("storage/local: write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage/local: close %s: %w", key, err)
	}
	return d.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(clean), "/"), nil
}
