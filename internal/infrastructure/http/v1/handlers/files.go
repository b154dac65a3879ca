package handlers

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/domain/submission"
)

// DocumentLookup loads the record that owns a stored document.
type DocumentLookup func(ctx context.Context, entityID id.ID) (submission.Record, error)

// Lookup adapts a typed getter to DocumentLookup.
func Lookup[T submission.Record](get func(ctx context.Context, entityID id.ID) (T, error)) DocumentLookup {
	return func(ctx context.Context, entityID id.ID) (submission.Record, error) {
		return get(ctx, entityID)
	}
}

// FileReader opens stored uploads.
type FileReader interface {
	Open(path string) (io.ReadCloser, error)
}

// FileHandler streams uploaded documents to admins.
type FileHandler struct {
	*BaseHandler
	files   FileReader
	lookups map[string]DocumentLookup
}

// NewFileHandler creates a file handler. lookups is keyed by the entity path segment.
func NewFileHandler(base *BaseHandler, files FileReader, lookups map[string]DocumentLookup) *FileHandler {
	return &FileHandler{BaseHandler: base, files: files, lookups: lookups}
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// DownloadName builds "<Submitter_Name>_<document_type><ext>".
func DownloadName(submitter, document, stored string) string {
	name := strings.Trim(nonAlnum.ReplaceAllString(submitter, "_"), "_")
	if name == "" {
		name = "document"
	}
	return name + "_" + strings.ReplaceAll(document, "-", "_") + strings.ToLower(filepath.Ext(stored))
}

// Download handles GET /api/admin/files/:entity/:id/:document
func (h *FileHandler) Download(c *gin.Context) {
	entity := c.Param("entity")
	lookup, ok := h.lookups[entity]
	if !ok {
		h.Error(c, apperror.NewNotFound("entity", entity))
		return
	}
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rec, err := lookup(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	document := c.Param("document")
	stored, ok := rec.Documents()[document]
	if !ok {
		h.Error(c, apperror.NewNotFound("document", document))
		return
	}

	f, err := h.files.Open(stored)
	if err != nil {
		h.Error(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, DownloadName(rec.Recipient().Name, document, stored)))
	c.Header("Content-Type", contentType(stored))
	c.Status(200)
	if _, err := io.Copy(c.Writer, f); err != nil {
		_ = c.Error(err)
	}
}

func contentType(stored string) string {
	switch strings.ToLower(filepath.Ext(stored)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
