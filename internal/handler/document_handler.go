package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/model"
	"github.com/lexcase/caseflow/internal/service"
)

// DocumentService is what the document endpoints need
type DocumentService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*model.StoredFile, error)
	Delete(ctx context.Context, key string) error
}

// DocumentHandler handles case document uploads
type DocumentHandler struct {
	documentService DocumentService
	logger          *zap.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// Upload stores a case document
// POST /api/v1/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file uploaded", err)
		return
	}

	stored, err := h.documentService.Upload(c.Request.Context(), header, c.PostForm("folder"))
	if err != nil {
		handleError(c, h.logger, "Failed to upload document", err)
		return
	}

	ok(c, http.StatusCreated, stored, "Document uploaded successfully")
}

// Delete removes a stored case document by key
// DELETE /api/v1/documents?key=
func (h *DocumentHandler) Delete(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		fail(c, http.StatusBadRequest, "Document key is required", fmt.Errorf("%w: missing key", service.ErrInvalidInput))
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), key); err != nil {
		handleError(c, h.logger, "Failed to delete document", err)
		return
	}

	ok(c, http.StatusOK, nil, "Document deleted")
}
