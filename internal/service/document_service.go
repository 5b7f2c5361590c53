package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/model"
	"github.com/lexcase/caseflow/internal/storage"
)

// DocumentService uploads and removes case documents
type DocumentService struct {
	storage           storage.Storage
	maxFileSize       int64
	allowedExtensions []string
	logger            *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(store storage.Storage, cfg config.UploadConfig, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		storage:           store,
		maxFileSize:       cfg.MaxFileSize,
		allowedExtensions: cfg.AllowedExtensions,
		logger:            logger,
	}
}

// Upload validates and stores a file under folder
func (s *DocumentService) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*model.StoredFile, error) {
	if err := s.validateFile(file); err != nil {
		return nil, err
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Filename))); byExt != "" {
			contentType = byExt
		}
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	stored, err := s.storage.Upload(ctx, src, file.Size, folder, file.Filename, contentType)
	if err != nil {
		s.logger.Error("Failed to store file", zap.String("filename", file.Filename), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Document uploaded", zap.String("key", stored.Key), zap.Int64("size", stored.Size))
	return stored, nil
}

// Delete removes a stored document by key
func (s *DocumentService) Delete(ctx context.Context, key string) error {
	err := s.storage.Delete(ctx, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrInvalidKey):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, storage.ErrNotFound):
		return ErrDocumentNotFound
	default:
		s.logger.Error("Failed to delete file", zap.String("key", key), zap.Error(err))
		return err
	}
}

// validateFile checks if a file meets the requirements
func (s *DocumentService) validateFile(file *multipart.FileHeader) error {
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d bytes)", ErrFileTooLarge, file.Size, s.maxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.allowedExtensions) == 0 {
		return nil
	}
	for _, allowed := range s.allowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrFileTypeNotAllowed, ext)
}
