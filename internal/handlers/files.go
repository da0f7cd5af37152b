package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"avatar-wizard-backend/internal/models"
	"avatar-wizard-backend/internal/storage"
)

type FilesHandler struct {
	store *storage.Store
}

func NewFilesHandler(store *storage.Store) *FilesHandler {
	return &FilesHandler{store: store}
}

// Serve godoc
// @Summary     Serve a stored file
// @Description Serves uploaded originals and generated previews. The resolved path must stay inside the upload root.
// @Tags        files
// @Produce     octet-stream
// @Param       filepath path string true "File path under the upload root"
// @Success     200 {file} binary
// @Failure     404 {object} models.ErrorResponse
// @Router      /uploads/{filepath} [get]
func (h *FilesHandler) Serve(c *gin.Context) {
	relPath := c.Param("filepath")

	abs, err := h.store.Resolve(relPath)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "file not found"})
		return
	}

	c.File(abs)
}
