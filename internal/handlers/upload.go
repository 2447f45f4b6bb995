package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spread-puzzle/puzzle-board-api/internal/constants"
	apierrors "github.com/spread-puzzle/puzzle-board-api/internal/errors"
	"github.com/spread-puzzle/puzzle-board-api/internal/storage"
)

var (
	errNoFile          = errors.New("no file provided")
	errFileTooLarge    = fmt.Errorf("file exceeds %d bytes", constants.MaxUploadSizeBytes)
	errUnsupportedType = errors.New("unsupported file type")
)

// readImageFile extracts and validates an uploaded image from the multipart
// form. Type and size limits are enforced here, before object storage is
// invoked.
func readImageFile(header *multipart.FileHeader) ([]byte, string, error) {
	if header == nil {
		return nil, "", errNoFile
	}
	if header.Size > constants.MaxUploadSizeBytes {
		return nil, "", errFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if !constants.AllowedImageTypes[contentType] {
		return nil, "", errUnsupportedType
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadSizeBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) > constants.MaxUploadSizeBytes {
		return nil, "", errFileTooLarge
	}

	return data, contentType, nil
}

// UploadHandler exposes standalone image uploads.
type UploadHandler struct {
	store storage.ObjectStorage
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store storage.ObjectStorage) *UploadHandler {
	return &UploadHandler{store: store}
}

// UploadImage stores a single image and returns its public URL.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		apierrors.BadRequest(c, "No file provided")
		return
	}

	data, contentType, err := readImageFile(header)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	url, err := h.store.Upload(c.Request.Context(), data, contentType, header.Filename)
	if err != nil {
		apierrors.BadGateway(c, "storage", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
