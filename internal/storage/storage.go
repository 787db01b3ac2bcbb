// Package storage provides the object storage collaborator used for event images.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage uploads a blob and returns a URL for it.
type ObjectStorage interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// LocalObjectStorage stores blobs on the local filesystem and hands back
// file:// URLs. It stands in for a hosted bucket in development and tests.
type LocalObjectStorage struct {
	dir string
}

// NewLocalObjectStorage creates the backing directory if needed.
func NewLocalObjectStorage(dir string) (*LocalObjectStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	return &LocalObjectStorage{dir: dir}, nil
}

// Upload writes the blob atomically via a temp file + rename.
func (s *LocalObjectStorage) Upload(_ context.Context, data []byte) (string, error) {
	name := fmt.Sprintf("%d-%s.jpg", time.Now().UnixMilli(), uuid.NewString())
	dest := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, ".upload-*.tmp")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", err
	}

	return "file://" + abs, nil
}

var _ ObjectStorage = (*LocalObjectStorage)(nil)
