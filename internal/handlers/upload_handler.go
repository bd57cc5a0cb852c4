package handlers

import (
	"net/http"
	"strings"

	"github.com/arafatr/linkup/backend/pkg/storage"
	"github.com/labstack/echo/v4"
)

const maxUploadSize = 10 << 20 // 10 MiB

// UploadHandler handles image uploads to object storage
type UploadHandler struct {
	storage *storage.MinioClient
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(storageClient *storage.MinioClient) *UploadHandler {
	return &UploadHandler{storage: storageClient}
}

// RegisterUploadRoutes registers upload routes
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/upload", h.UploadImage)
}

// UploadImage stores the multipart "image" file and returns its public URL.
func (h *UploadHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "An image file is required")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "Image exceeds the 10MB limit")
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, "Only image uploads are allowed")
	}

	url, err := h.storage.UploadImage(c.Request().Context(), file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}
