package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/claims-portal/internal/application/service"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

// UploadFiles handles POST /api/v1/claims/:id/documents/:type/files.
// Files are read from the multipart field "files" in the order sent.
func (h *Handlers) UploadFiles(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, Response{Success: false, Error: "upload too large"})
			return
		}
		badRequest(c, "invalid multipart form")
		return
	}

	headers := form.File["files"]
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			h.logger.Error("Failed to read upload", "file", fh.Filename, "error", err)
			badRequest(c, fmt.Sprintf("could not read file %q", fh.Filename))
			return
		}
		files = append(files, f)
	}

	result, err := h.documents.UploadFiles(c.Request.Context(), principalFrom(c), c.Param("id"), c.Param("type"), files)
	if err != nil {
		if result != nil && len(result.Stored) > 0 {
			h.respondErrorWith(c, err, result)
			return
		}
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, result)
}

func readUpload(fh *multipart.FileHeader) (service.UploadFile, error) {
	src, err := fh.Open()
	if err != nil {
		return service.UploadFile{}, err
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return service.UploadFile{}, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	return service.UploadFile{Name: fh.Filename, ContentType: contentType, Content: content}, nil
}

// ListDocuments handles GET /api/v1/claims/:id/documents
func (h *Handlers) ListDocuments(c *gin.Context) {
	docs, err := h.documents.ListDocuments(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, docs)
}

// GetChecklist handles GET /api/v1/claims/:id/checklist
func (h *Handlers) GetChecklist(c *gin.Context) {
	cl, err := h.documents.GetChecklist(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, cl)
}

// SetDocumentStatus handles PUT /api/v1/claims/:id/documents/:type/status
func (h *Handlers) SetDocumentStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	review, err := h.documents.SetDocumentStatus(c.Request.Context(), principalFrom(c),
		c.Param("id"), c.Param("type"), workflow.State(req.Status), req.Comments)
	if err != nil {
		if review != nil {
			h.respondErrorWith(c, err, review)
			return
		}
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, review)
}

// DeleteFile handles DELETE /api/v1/claims/:id/files/:fileId
func (h *Handlers) DeleteFile(c *gin.Context) {
	fileID, err := strconv.ParseInt(c.Param("fileId"), 10, 64)
	if err != nil || fileID <= 0 {
		badRequest(c, "invalid file id")
		return
	}

	if err := h.documents.DeleteFile(c.Request.Context(), principalFrom(c), c.Param("id"), fileID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
