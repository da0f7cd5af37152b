package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"avatar-wizard-backend/internal/avatar"
	"avatar-wizard-backend/internal/models"
	"avatar-wizard-backend/internal/wizard"
)

type UploadHandler struct {
	pipeline *avatar.Pipeline
	sessions *wizard.Store
}

func NewUploadHandler(pipeline *avatar.Pipeline, sessions *wizard.Store) *UploadHandler {
	return &UploadHandler{
		pipeline: pipeline,
		sessions: sessions,
	}
}

// Upload godoc
// @Summary     Upload a photo
// @Description Accepts one JPEG, PNG or GIF image up to 10 MiB and stores it for later avatar generation. Every call creates a new upload record; retries must discard the previous id.
// @Tags        upload
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "Photo to transform"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no file uploaded"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to open uploaded file",
			Message: err.Error(),
		})
		return
	}
	defer src.Close()

	mimeType := fileHeader.Header.Get("Content-Type")

	upload, err := h.pipeline.SubmitUpload(c.Request.Context(), fileHeader.Filename, mimeType, fileHeader.Size, src)
	if err != nil {
		switch {
		case errors.Is(err, avatar.ErrInvalidFileType), errors.Is(err, avatar.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		default:
			log.Printf("upload failed: %v", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to process upload"})
		}
		return
	}

	filePath := "/uploads/" + upload.StoragePath

	// Keep the caller's wizard session in step with the pipeline.
	if id, ok := optionalSessionID(c); ok {
		h.sessions.Update(id, func(st *wizard.State) {
			st.RecordUpload(upload.ID, filePath)
		})
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		ID:       upload.ID,
		FilePath: filePath,
		FileName: upload.OriginalName,
		FileSize: upload.FileSize,
	})
}
