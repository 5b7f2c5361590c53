// Package storage uploads and deletes case documents on the configured
// backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/model"
)

var (
	// ErrNotFound is returned when deleting a key that does not exist
	ErrNotFound = errors.New("file not found")
	// ErrInvalidKey is returned for keys that escape the storage root
	ErrInvalidKey = errors.New("invalid storage key")
)

// Storage defines the interface for document storage operations
type Storage interface {
	// Upload stores the content under folder and returns its URL and key
	Upload(ctx context.Context, content io.Reader, size int64, folder, filename, contentType string) (*model.StoredFile, error)

	// Delete removes the object stored under key
	Delete(ctx context.Context, key string) error
}

// NewStorage creates the backend selected by cfg.Type
func NewStorage(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "s3":
		return NewS3Storage(cfg.S3)
	case "local":
		return NewLocalStorage(cfg.Local)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

// newKey builds folder/<uuid><ext>, keeping the original extension
func newKey(folder, filename string) (string, error) {
	folder = strings.Trim(path.Clean("/"+strings.ReplaceAll(folder, "\\", "/")), "/")
	if folder == "" {
		folder = "documents"
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)
	return key, validateKey(key)
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return ErrInvalidKey
		}
	}
	return nil
}
