package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrStorageWrite = errors.New("storage write failure")

// Object is a document written to a bucket.
type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Body        []byte
}

// Store writes objects, overwriting any existing object at the same key.
type Store interface {
	PutObject(ctx context.Context, obj Object) error
}

// DirStore stores objects below a local directory, one subdirectory per
// bucket.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Path returns the file an object is written to.
func (s *DirStore) Path(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("%w: invalid bucket %q", ErrStorageWrite, bucket)
	}

	rel := filepath.Clean(filepath.FromSlash(key))
	if key == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: invalid key %q", ErrStorageWrite, key)
	}

	return filepath.Join(s.root, bucket, rel), nil
}

func (s *DirStore) PutObject(ctx context.Context, obj Object) error {
	path, err := s.Path(obj.Bucket, obj.Key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	if err := os.WriteFile(path, obj.Body, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return nil
}
