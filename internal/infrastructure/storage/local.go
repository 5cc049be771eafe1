package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/application/port"
)

// LocalStorage implements port.ObjectStorage on the local filesystem.
// Files are served by the HTTP server under publicURL.
type LocalStorage struct {
	baseDir   string
	publicURL string
	logger    *zap.Logger
}

// NewLocalStorage creates a LocalStorage rooted at baseDir
func NewLocalStorage(baseDir, publicURL string, logger *zap.Logger) *LocalStorage {
	return &LocalStorage{
		baseDir:   baseDir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
	}
}

var _ port.ObjectStorage = (*LocalStorage)(nil)

// BaseDir returns the directory files are written under
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// Put writes content under key, creating parent directories
func (s *LocalStorage) Put(ctx context.Context, key string, content []byte, contentType string) (*port.StoredObject, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Stored object",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("size", len(content)))

	return &port.StoredObject{Key: key, URL: s.URL(key), Size: int64(len(content))}, nil
}

// Delete removes the object at key. Missing objects are not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to delete file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public URL of key
func (s *LocalStorage) URL(key string) string {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}

// resolve maps key to a path and rejects keys escaping baseDir
func (s *LocalStorage) resolve(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory: %s", key)
	}
	return absPath, nil
}
