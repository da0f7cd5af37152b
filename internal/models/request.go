package models

type GenerateAvatarRequest struct {
	ImageID int64 `json:"imageId" binding:"required"`
	// Gender tag folded into the generation prompt ("male" or "female").
	Gender string `json:"gender,omitempty" example:"female"`
	// Free-text style modifiers appended to the base prompt.
	CustomPrompt string `json:"customPrompt,omitempty" example:"in a tuxedo"`
}

type SubmitOrderRequest struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	OriginalImageURL   string `json:"originalImageUrl"`
	GeneratedAvatarURL string `json:"generatedAvatarUrl"`
	Prompt             string `json:"prompt,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type ContactRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}
