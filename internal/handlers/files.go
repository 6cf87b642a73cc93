package handlers

import (
	"fmt"
	"net/http"

	"care4-server/internal/services"

	"github.com/gin-gonic/gin"
)

// FileHandler serves stored identification documents.
type FileHandler struct {
	Pipeline *services.Pipeline
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(pipeline *services.Pipeline) *FileHandler {
	return &FileHandler{Pipeline: pipeline}
}

// GetFile streams a stored document.
func (h *FileHandler) GetFile(c *gin.Context) {
	file, err := h.Pipeline.Document(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if file.Name != "" {
		c.Writer.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Name))
	}
	c.Data(http.StatusOK, contentType, file.Content)
}
