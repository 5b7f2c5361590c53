package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/model"
)

// LocalStorage implements the Storage interface for local filesystem
type LocalStorage struct {
	basePath    string
	baseURL     string
	permissions os.FileMode
}

// NewLocalStorage creates a new LocalStorage
func NewLocalStorage(cfg config.LocalStorageConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	perms, err := strconv.ParseUint(cfg.Permissions, 8, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid permissions format: %w", err)
	}

	return &LocalStorage{
		basePath:    cfg.BasePath,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		permissions: os.FileMode(perms),
	}, nil
}

// Upload writes content to basePath/<key>
func (s *LocalStorage) Upload(ctx context.Context, content io.Reader, size int64, folder, filename, contentType string) (*model.StoredFile, error) {
	key, err := newKey(folder, filename)
	if err != nil {
		return nil, err
	}

	filePath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.OpenFile(filePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, s.permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	written, err := io.Copy(dst, content)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}

	// OpenFile applies the umask, so set the mode explicitly
	if err := os.Chmod(filePath, s.permissions); err != nil {
		return nil, fmt.Errorf("failed to set file permissions: %w", err)
	}

	return &model.StoredFile{
		URL:         fmt.Sprintf("%s/%s", s.baseURL, key),
		Key:         key,
		FileName:    filename,
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Delete removes basePath/<key>
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
