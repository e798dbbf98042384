package handler

import (
	"net/http"
	"os"

	"github.com/Mrabbi3/ConceptsPro/internal/service"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/Mrabbi3/ConceptsPro/pkg/response"
	"github.com/Mrabbi3/ConceptsPro/pkg/storage"
	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	service service.FileService
	local   *storage.LocalStorage
}

// NewFileHandler serves uploads and downloads. local is nil when a
// remote storage driver is active; downloads then go straight to the
// remote URL and the serve route 404s.
func NewFileHandler(service service.FileService, local *storage.LocalStorage) *FileHandler {
	return &FileHandler{service: service, local: local}
}

func (h *FileHandler) Upload(c *gin.Context) {
	folder := c.Param("folder")

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "missing file field"))
		return
	}

	uploaded, err := h.service.Upload(c.Request.Context(), folder, header)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, uploaded)
}

func (h *FileHandler) UploadMultiple(c *gin.Context) {
	folder := c.Param("folder")

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid multipart form"))
		return
	}

	uploaded, err := h.service.UploadMultiple(c.Request.Context(), folder, form.File["files"])
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": uploaded})
}

func (h *FileHandler) Serve(c *gin.Context) {
	if h.local == nil {
		response.Error(c, apperror.Wrap(apperror.ErrNotFound, "file not found"))
		return
	}

	path, err := h.local.Resolve(c.Param("folder"), c.Param("filename"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid file path"))
		return
	}

	if _, err := os.Stat(path); err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrNotFound, "file not found"))
		return
	}

	c.File(path)
}
