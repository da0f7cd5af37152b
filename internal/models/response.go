package models

import "time"

type UploadResponse struct {
	ID       int64  `json:"id"`
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

type GenerateAvatarResponse struct {
	Success       bool   `json:"success"`
	AvatarURL     string `json:"avatarUrl"`
	OriginalImage string `json:"originalImage"`
	Prompt        string `json:"prompt"`
	Analysis      string `json:"analysis"`
}

type SubmitOrderResponse struct {
	Success bool   `json:"success"`
	OrderID int64  `json:"orderId"`
	Message string `json:"message"`
}

type OrderResponse struct {
	ID                 int64     `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	OriginalImageURL   string    `json:"originalImageUrl"`
	GeneratedAvatarURL string    `json:"generatedAvatarUrl"`
	Prompt             string    `json:"prompt,omitempty"`
	Status             string    `json:"status"`
	ModelURL           string    `json:"modelUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

type WizardStateResponse struct {
	Stage            int               `json:"stage"`
	UploadID         int64             `json:"uploadId,omitempty"`
	OriginalImageURL string            `json:"originalImageUrl,omitempty"`
	PreviewURL       string            `json:"previewUrl,omitempty"`
	Analysis         string            `json:"analysis,omitempty"`
	PromptText       string            `json:"promptText,omitempty"`
	PreviewConfirmed bool              `json:"previewConfirmed"`
	Contact          map[string]string `json:"contact"`
	FieldErrors      map[string]string `json:"fieldErrors,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
