package avatar

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFileType = errors.New("invalid file type, only JPG, PNG and GIF files are allowed")
	ErrFileTooLarge    = errors.New("file exceeds the 10 MiB limit")
	ErrUploadNotFound  = errors.New("uploaded image not found")
	ErrOrderNotFound   = errors.New("order not found")
)

// Pipeline stages that talk to the outside world.
const (
	StageAnalysis   = "analysis"
	StageGeneration = "generation"
	StageDownload   = "download"
)

// ExternalError tags a failure with the pipeline stage it came from so
// handlers can log the detail while returning a generic retry prompt.
type ExternalError struct {
	Stage string
	Err   error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// ValidationError carries per-field messages for a rejected order.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order data: %d field(s) failed validation", len(e.Fields))
}
