// Package blobstore keeps raw uploaded payloads on the local filesystem.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid blob key")

// Object describes one stored payload.
type Object struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// FileStore stores one file per key under a root directory. Keys use forward slashes
// and may contain sub-directories.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the directory holding the blobs.
func (s *FileStore) Root() string {
	return s.root
}

// ValidateKey reports whether key is a clean relative path inside the store.
func ValidateKey(key string) error {
	if key == "" || strings.ContainsRune(key, '\\') || strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if path.IsAbs(key) || path.Clean(key) != key || key == "." ||
		key == ".." || strings.HasPrefix(key, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if strings.HasPrefix(part, ".tmp-") {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

func (s *FileStore) pathFor(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Put writes data under key, replacing any previous payload.
func (s *FileStore) Put(_ context.Context, key string, data []byte) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Get returns the payload stored under key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p) // #nosec G304 -- key validated against the store root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, internalErrors.NewDocumentNotFoundError(key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Size returns the stored size of key in bytes.
func (s *FileStore) Size(_ context.Context, key string) (int64, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, internalErrors.NewDocumentNotFoundError(key)
		}
		return 0, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return info.Size(), nil
}

// Delete removes key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return internalErrors.NewDocumentNotFoundError(key)
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// List returns up to limit objects sorted by key. A limit of zero or less lists everything.
func (s *FileStore) List(ctx context.Context, limit int) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, Object{Key: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	if limit > 0 && len(objects) > limit {
		objects = objects[:limit]
	}
	if objects == nil {
		objects = []Object{}
	}
	return objects, nil
}

// TotalSize returns the combined size of every stored payload.
func (s *FileStore) TotalSize(ctx context.Context) (int64, error) {
	objects, err := s.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, o := range objects {
		total += o.Size
	}
	return total, nil
}
