package blobstore

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LocalBackend keeps buckets as directories under root. Content types are not recorded.
type LocalBackend struct {
	fs   afero.Fs
	root string
}

func NewLocalBackend(fs afero.Fs, root string) *LocalBackend {
	return &LocalBackend{fs: fs, root: root}
}

func (b *LocalBackend) Name() string {
	return "local storage"
}

func (b *LocalBackend) BucketExists(_ context.Context, bucket string) (bool, error) {
	return afero.DirExists(b.fs, b.bucketPath(bucket))
}

func (b *LocalBackend) CreateBucket(_ context.Context, bucket string) error {
	return b.fs.MkdirAll(b.bucketPath(bucket), 0o755)
}

func (b *LocalBackend) Upload(ctx context.Context, bucket, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ok, err := afero.DirExists(b.fs, b.bucketPath(bucket))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrBucketNotExist, bucket)
	}

	dst, err := b.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := b.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(b.fs, dst, data, 0o644)
}

// objectPath maps key to a file inside the bucket directory. Absolute keys and keys with ".."
// segments are rejected.
func (b *LocalBackend) objectPath(bucket, key string) (string, error) {
	if key == "" || path.IsAbs(key) || filepath.IsAbs(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, seg := range strings.FieldsFunc(key, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}

	root := b.bucketPath(bucket)
	full := filepath.Join(root, filepath.FromSlash(key))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return full, nil
}

func (b *LocalBackend) bucketPath(bucket string) string {
	return filepath.Join(b.root, bucket)
}
