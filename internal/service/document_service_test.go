package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/model"
	"github.com/lexcase/caseflow/internal/storage"
)

type mockStorage struct {
	uploaded    map[string]string
	contentType string
	deleteErr   error
}

func (m *mockStorage) Upload(_ context.Context, content io.Reader, size int64, folder, filename, contentType string) (*model.StoredFile, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	key := folder + "/" + filename
	if m.uploaded == nil {
		m.uploaded = map[string]string{}
	}
	m.uploaded[key] = string(data)
	m.contentType = contentType
	return &model.StoredFile{URL: "http://files.test/" + key, Key: key, FileName: filename, ContentType: contentType, Size: size}, nil
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	return m.deleteErr
}

// fileHeader builds a multipart file header the way gin hands it to handlers
func fileHeader(t *testing.T, filename, contentType, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	w.Close()

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func newDocumentService(store storage.Storage) *DocumentService {
	return NewDocumentService(store, config.UploadConfig{
		MaxFileSize:       16,
		AllowedExtensions: []string{".pdf", ".docx"},
	}, zap.NewNop())
}

func TestDocumentUpload(t *testing.T) {
	store := &mockStorage{}
	svc := newDocumentService(store)

	file, err := svc.Upload(context.Background(), fileHeader(t, "ruling.pdf", "", "ruling"), "cases/LC-001")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if file.Key != "cases/LC-001/ruling.pdf" {
		t.Errorf("key = %q", file.Key)
	}
	if store.uploaded[file.Key] != "ruling" {
		t.Errorf("stored content = %q", store.uploaded[file.Key])
	}
	if store.contentType != "application/pdf" {
		t.Errorf("content type = %q, want guessed from extension", store.contentType)
	}
}

func TestDocumentUploadValidation(t *testing.T) {
	svc := newDocumentService(&mockStorage{})
	ctx := context.Background()

	_, err := svc.Upload(ctx, fileHeader(t, "big.pdf", "application/pdf", "this content is far too long"), "cases")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("oversized upload = %v, want ErrFileTooLarge", err)
	}

	_, err = svc.Upload(ctx, fileHeader(t, "script.exe", "application/octet-stream", "MZ"), "cases")
	if !errors.Is(err, ErrFileTypeNotAllowed) {
		t.Errorf("exe upload = %v, want ErrFileTypeNotAllowed", err)
	}
}

func TestDocumentDelete(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"ok", nil, nil},
		{"missing", fmt.Errorf("%w: x", storage.ErrNotFound), ErrDocumentNotFound},
		{"traversal", storage.ErrInvalidKey, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newDocumentService(&mockStorage{deleteErr: tt.err})
			err := svc.Delete(context.Background(), "cases/x.pdf")
			if tt.wantErr == nil && err != nil {
				t.Errorf("Delete() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
