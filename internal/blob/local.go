package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPresignUnsupported is returned by stores that cannot mint
// time-limited URLs; callers should stream the object instead.
var ErrPresignUnsupported = errors.New("presigned URLs not supported by this store")

// LocalStore keeps objects on the local filesystem. Used in local
// development and as the auto-mode fallback when S3 is not configured.
type LocalStore struct {
	dir string
}

// NewLocalStore builds a store rooted at dir. The directory is created
// on first write, not here.
func NewLocalStore(dir string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "data/exports"
	}
	return &LocalStore{dir: dir}, nil
}

// path maps an object key to a file path, rejecting traversal.
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *LocalStore) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	p, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create object dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write object: %w", err)
	}
	return int64(len(data)), nil
}

func (s *LocalStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return data, nil
}

func (s *LocalStore) PresignGet(ctx context.Context, key string, ttlSeconds int) (string, error) {
	return "", ErrPresignUnsupported
}

func (s *LocalStore) DeleteObject(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
