package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexcase/caseflow/internal/config"
)

func TestNewKey(t *testing.T) {
	tests := []struct {
		folder, filename, wantPrefix, wantExt string
	}{
		{"cases/LC-001", "hearing.PDF", "cases/LC-001/", ".pdf"},
		{"", "notes.txt", "documents/", ".txt"},
		{"../../etc", "passwd", "etc/", ".bin"},
		{"/abs//path/", "a.docx", "abs/path/", ".docx"},
	}

	for _, tt := range tests {
		key, err := newKey(tt.folder, tt.filename)
		if err != nil {
			t.Errorf("newKey(%q, %q) error = %v", tt.folder, tt.filename, err)
			continue
		}
		if !strings.HasPrefix(key, tt.wantPrefix) || !strings.HasSuffix(key, tt.wantExt) {
			t.Errorf("newKey(%q, %q) = %q, want %s...%s", tt.folder, tt.filename, key, tt.wantPrefix, tt.wantExt)
		}
	}
}

func TestValidateKey(t *testing.T) {
	bad := []string{"", "/etc/passwd", "a/../b", "a//b", `a\b`, "./a"}
	for _, key := range bad {
		if err := validateKey(key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("validateKey(%q) = %v, want ErrInvalidKey", key, err)
		}
	}
	if err := validateKey("cases/x.pdf"); err != nil {
		t.Errorf("validateKey(valid) = %v", err)
	}
}

func newTestLocal(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocalStorage(config.LocalStorageConfig{
		BasePath:    dir,
		BaseURL:     "http://files.test/",
		Permissions: "0644",
	})
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}
	return s, dir
}

func TestLocalStorageUploadAndDelete(t *testing.T) {
	s, dir := newTestLocal(t)
	ctx := context.Background()

	body := "affidavit contents"
	file, err := s.Upload(ctx, strings.NewReader(body), int64(len(body)), "cases/LC-001", "affidavit.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if file.URL != "http://files.test/"+file.Key {
		t.Errorf("URL = %q, key = %q", file.URL, file.Key)
	}
	if file.Size != int64(len(body)) {
		t.Errorf("Size = %d, want %d", file.Size, len(body))
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(file.Key)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != body {
		t.Errorf("stored content = %q", data)
	}

	if err := s.Delete(ctx, file.Key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, file.Key); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() = %v, want ErrNotFound", err)
	}
}

func TestLocalStorageDeleteRejectsTraversal(t *testing.T) {
	s, _ := newTestLocal(t)
	if err := s.Delete(context.Background(), "../outside.txt"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Delete() = %v, want ErrInvalidKey", err)
	}
}

func TestNewStorageUnknownType(t *testing.T) {
	if _, err := NewStorage(config.StorageConfig{Type: "ftp"}); err == nil {
		t.Error("expected error for unknown storage type")
	}
}

func TestNewStorageLocal(t *testing.T) {
	s, err := NewStorage(config.StorageConfig{
		Type:  "local",
		Local: config.LocalStorageConfig{BasePath: t.TempDir(), BaseURL: "http://x", Permissions: "0600"},
	})
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Errorf("NewStorage() = %T, want *LocalStorage", s)
	}
}
