package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"avatar-wizard-backend/internal/models"
	"avatar-wizard-backend/internal/wizard"
)

type WizardHandler struct {
	sessions *wizard.Store
}

func NewWizardHandler(sessions *wizard.Store) *WizardHandler {
	return &WizardHandler{sessions: sessions}
}

// GetState godoc
// @Summary     Get wizard state
// @Description Returns the caller's current wizard state, creating a session on first contact.
// @Tags        wizard
// @Produce     json
// @Success     200 {object} models.WizardStateResponse
// @Router      /api/wizard [get]
func (h *WizardHandler) GetState(c *gin.Context) {
	st := h.sessions.Get(sessionID(c))
	c.JSON(http.StatusOK, stateResponse(st, nil))
}

// Advance godoc
// @Summary     Advance the wizard
// @Description Moves one stage forward if the current stage's exit gate holds. Gate failures leave the stage unchanged and return field-level errors.
// @Tags        wizard
// @Produce     json
// @Success     200 {object} models.WizardStateResponse
// @Failure     400 {object} models.WizardStateResponse
// @Router      /api/wizard/advance [post]
func (h *WizardHandler) Advance(c *gin.Context) {
	var gateErr *wizard.GateError
	st := h.sessions.Update(sessionID(c), func(s *wizard.State) {
		err := s.Advance()
		errors.As(err, &gateErr)
	})

	if gateErr != nil {
		c.JSON(http.StatusBadRequest, stateResponse(st, gateErr.Fields))
		return
	}
	c.JSON(http.StatusOK, stateResponse(st, nil))
}

// Retreat godoc
// @Summary     Go back one stage
// @Description Always succeeds while the stage is above 0; collected data is retained.
// @Tags        wizard
// @Produce     json
// @Success     200 {object} models.WizardStateResponse
// @Router      /api/wizard/retreat [post]
func (h *WizardHandler) Retreat(c *gin.Context) {
	st := h.sessions.Update(sessionID(c), func(s *wizard.State) {
		s.Retreat()
	})
	c.JSON(http.StatusOK, stateResponse(st, nil))
}

// Reset godoc
// @Summary     Reset the wizard
// @Description Clears all collected state and returns to the upload stage.
// @Tags        wizard
// @Produce     json
// @Success     200 {object} models.WizardStateResponse
// @Router      /api/wizard/reset [post]
func (h *WizardHandler) Reset(c *gin.Context) {
	st := h.sessions.Reset(sessionID(c))
	c.JSON(http.StatusOK, stateResponse(st, nil))
}

// ConfirmPreview godoc
// @Summary     Confirm the generated preview
// @Description Marks the currently displayed preview as accepted. Confirmation is an explicit user action and a prerequisite for leaving the preview stage.
// @Tags        wizard
// @Produce     json
// @Success     200 {object} models.WizardStateResponse
// @Failure     400 {object} models.WizardStateResponse
// @Router      /api/wizard/confirm-preview [post]
func (h *WizardHandler) ConfirmPreview(c *gin.Context) {
	st := h.sessions.Update(sessionID(c), func(s *wizard.State) {
		s.ConfirmPreview()
	})

	if !st.PreviewConfirmed {
		c.JSON(http.StatusBadRequest, stateResponse(st, map[string]string{
			"preview": "no generated preview to confirm",
		}))
		return
	}
	c.JSON(http.StatusOK, stateResponse(st, nil))
}

// SetContact godoc
// @Summary     Set contact fields
// @Description Updates one or more contact fields and marks them as touched. Values are validated at the stage gate and again server-side on order submission.
// @Tags        wizard
// @Accept      json
// @Produce     json
// @Param       request body models.ContactRequest true "Fields to update"
// @Success     200 {object} models.WizardStateResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/wizard/contact [post]
func (h *WizardHandler) SetContact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid contact data", Message: err.Error()})
		return
	}

	st := h.sessions.Update(sessionID(c), func(s *wizard.State) {
		if req.FirstName != nil {
			s.SetContactField("firstName", *req.FirstName)
		}
		if req.LastName != nil {
			s.SetContactField("lastName", *req.LastName)
		}
		if req.Email != nil {
			s.SetContactField("email", *req.Email)
		}
		if req.Phone != nil {
			s.SetContactField("phone", *req.Phone)
		}
	})
	c.JSON(http.StatusOK, stateResponse(st, nil))
}

func stateResponse(st wizard.State, fieldErrors map[string]string) models.WizardStateResponse {
	return models.WizardStateResponse{
		Stage:            int(st.Stage),
		UploadID:         st.UploadID,
		OriginalImageURL: st.OriginalImageURL,
		PreviewURL:       st.PreviewURL,
		Analysis:         st.Analysis,
		PromptText:       st.PromptText,
		PreviewConfirmed: st.PreviewConfirmed,
		Contact: map[string]string{
			"firstName": st.Contact.FirstName,
			"lastName":  st.Contact.LastName,
			"email":     st.Contact.Email,
			"phone":     st.Contact.Phone,
		},
		FieldErrors: fieldErrors,
	}
}
