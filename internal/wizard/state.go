// Package wizard hosts the per-session step controller for the avatar
// ordering flow. State lives in memory for the duration of one session
// and is never persisted.
package wizard

import (
	"avatar-wizard-backend/internal/validate"
)

// Stage is the wizard's position: a linear sequence with no branching
// and no skipping forward.
type Stage int

const (
	StageUpload Stage = iota
	StagePreview
	StageContact
	StageModelPreview
)

// GateError reports why Advance was refused. The stage never changes on
// a gate failure; the messages are meant for inline display.
type GateError struct {
	Fields map[string]string
}

func (e *GateError) Error() string {
	return "stage gate failed"
}

// State is the accumulated form state for one session. Mutated only in
// response to user actions or pipeline responses.
type State struct {
	Stage Stage

	UploadID         int64
	OriginalImageURL string

	PromptText       string
	PreviewURL       string
	Analysis         string
	PreviewConfirmed bool

	Contact validate.Contact
	Touched map[string]bool
}

func newState() *State {
	return &State{Touched: make(map[string]bool)}
}

// RecordUpload stores the result of a successful upload call. A new
// upload supersedes the old one and invalidates any generated preview.
func (s *State) RecordUpload(uploadID int64, originalImageURL string) {
	s.UploadID = uploadID
	s.OriginalImageURL = originalImageURL
	s.PreviewURL = ""
	s.Analysis = ""
	s.PreviewConfirmed = false
}

// RecordPreview stores a generation result. Each call supersedes the
// previous preview for display purposes and resets the confirmation.
func (s *State) RecordPreview(previewURL, analysis, promptText string) {
	s.PreviewURL = previewURL
	s.Analysis = analysis
	s.PromptText = promptText
	s.PreviewConfirmed = false
}

// ConfirmPreview marks the currently displayed preview as accepted.
// Confirmation is an explicit user action, never automatic.
func (s *State) ConfirmPreview() {
	if s.PreviewURL != "" {
		s.PreviewConfirmed = true
	}
}

// SetContactField updates one contact field and marks it touched.
func (s *State) SetContactField(field, value string) {
	switch field {
	case "firstName":
		s.Contact.FirstName = value
	case "lastName":
		s.Contact.LastName = value
	case "email":
		s.Contact.Email = value
	case "phone":
		s.Contact.Phone = value
	default:
		return
	}
	if s.Touched == nil {
		s.Touched = make(map[string]bool)
	}
	s.Touched[field] = true
}

// Advance moves one stage forward if the current stage's exit gate
// holds. Beyond the last stage it is a no-op.
func (s *State) Advance() error {
	switch s.Stage {
	case StageUpload:
		if s.UploadID == 0 {
			return &GateError{Fields: map[string]string{
				"file": "a photo must be uploaded before continuing",
			}}
		}
	case StagePreview:
		if s.PreviewURL == "" {
			return &GateError{Fields: map[string]string{
				"preview": "a preview must be generated before continuing",
			}}
		}
		if !s.PreviewConfirmed {
			return &GateError{Fields: map[string]string{
				"preview": "the generated preview must be confirmed",
			}}
		}
	case StageContact:
		if errs := s.contactGateErrors(); len(errs) > 0 {
			return &GateError{Fields: errs}
		}
	case StageModelPreview:
		return nil
	}

	s.Stage++
	return nil
}

// Retreat moves one stage back. It always succeeds while stage > 0 and
// retains everything already collected so the user can come back.
func (s *State) Retreat() {
	if s.Stage > 0 {
		s.Stage--
	}
}

func (s *State) contactGateErrors() map[string]string {
	errs := s.Contact.Validate()
	for _, field := range []string{"firstName", "lastName", "email", "phone"} {
		if _, failed := errs[field]; failed {
			continue
		}
		if !s.Touched[field] {
			errs[field] = "this field is required"
		}
	}
	return errs
}
