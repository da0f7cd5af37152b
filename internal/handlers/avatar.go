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

type AvatarHandler struct {
	pipeline *avatar.Pipeline
	sessions *wizard.Store
}

func NewAvatarHandler(pipeline *avatar.Pipeline, sessions *wizard.Store) *AvatarHandler {
	return &AvatarHandler{
		pipeline: pipeline,
		sessions: sessions,
	}
}

// Generate godoc
// @Summary     Generate an avatar preview
// @Description Runs the two-stage pipeline for an uploaded photo: vision analysis, then figurine generation with the fixed style template plus the caller's modifiers. Calling again with a new prompt supersedes the previous preview.
// @Tags        avatar
// @Accept      json
// @Produce     json
// @Param       request body models.GenerateAvatarRequest true "Upload id, gender tag and optional prompt modifiers"
// @Success     200 {object} models.GenerateAvatarResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/generate-avatar [post]
func (h *AvatarHandler) Generate(c *gin.Context) {
	var req models.GenerateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "image ID is required"})
		return
	}

	result, err := h.pipeline.GeneratePreview(c.Request.Context(), req.ImageID, req.Gender, req.CustomPrompt)
	if err != nil {
		var extErr *avatar.ExternalError
		switch {
		case errors.Is(err, avatar.ErrUploadNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "uploaded image not found"})
		case errors.As(err, &extErr):
			// Full detail stays server-side; the user gets a retry prompt.
			log.Printf("avatar generation failed at %s stage: %v", extErr.Stage, extErr.Err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to generate avatar",
				Message: "the image service is unavailable, please try again",
			})
		default:
			log.Printf("avatar generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to generate avatar"})
		}
		return
	}

	if id, ok := optionalSessionID(c); ok {
		h.sessions.Update(id, func(st *wizard.State) {
			st.RecordPreview(result.AvatarURL, result.Analysis, req.CustomPrompt)
		})
	}

	c.JSON(http.StatusOK, models.GenerateAvatarResponse{
		Success:       true,
		AvatarURL:     result.AvatarURL,
		OriginalImage: result.OriginalImageURL,
		Prompt:        result.Prompt,
		Analysis:      result.Analysis,
	})
}
