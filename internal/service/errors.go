package service

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrCaseNotFound         = errors.New("case not found")
	ErrUserNotFound         = errors.New("user not found or inactive")
	ErrInvalidInput         = errors.New("invalid input")
	ErrFileTooLarge         = errors.New("file too large")
	ErrFileTypeNotAllowed   = errors.New("file type not allowed")
	ErrDocumentNotFound     = errors.New("document not found")
)
