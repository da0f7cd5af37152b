package avatar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	"avatar-wizard-backend/internal/database"
	"avatar-wizard-backend/internal/models"
	"avatar-wizard-backend/internal/storage"
	"avatar-wizard-backend/internal/validate"
)

const maxUploadSize = 10 << 20 // 10 MiB

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// DB is the subset of database operations the pipeline needs.
type DB interface {
	CreateUpload(ctx context.Context, upload *models.Upload) (*models.Upload, error)
	GetUpload(ctx context.Context, id int64) (*models.Upload, error)
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error)
}

// AI is the external analysis/generation surface. Both stages are
// stubbed independently in tests.
type AI interface {
	AnalyzePhoto(ctx context.Context, imageData []byte, mimeType string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

type Options struct {
	AnalysisTimeout   time.Duration
	GenerationTimeout time.Duration
	MaxConcurrent     int
	// KeepGenerated retains every generated file. When false, a
	// regeneration purges the previous files for the same upload.
	KeepGenerated bool
}

// Pipeline is the server-side submission sequence: accept an upload,
// analyze it, generate a figurine preview, persist the order.
type Pipeline struct {
	db    DB
	ai    AI
	store *storage.Store
	opts  Options
	sem   *semaphore.Weighted
}

type PreviewResult struct {
	AvatarURL        string
	OriginalImageURL string
	Analysis         string
	Prompt           string
}

func NewPipeline(db DB, ai AI, store *storage.Store, opts Options) *Pipeline {
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 60 * time.Second
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 120 * time.Second
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}

	return &Pipeline{
		db:    db,
		ai:    ai,
		store: store,
		opts:  opts,
		sem:   semaphore.NewWeighted(int64(opts.MaxConcurrent)),
	}
}

// SubmitUpload validates and persists one uploaded photo. Each call
// stores a new file and creates a new row; retries are not idempotent
// and callers must discard any prior id.
func (p *Pipeline) SubmitUpload(ctx context.Context, originalName, mimeType string, size int64, r io.Reader) (*models.Upload, error) {
	if !allowedMimeTypes[mimeType] {
		return nil, ErrInvalidFileType
	}
	if size > maxUploadSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxUploadSize {
		return nil, ErrFileTooLarge
	}

	storedName, err := p.store.SaveUpload(originalName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	upload, err := p.db.CreateUpload(ctx, &models.Upload{
		OriginalName: originalName,
		StoragePath:  storedName,
		FileType:     mimeType,
		FileSize:     int64(len(data)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}

	return upload, nil
}

// GeneratePreview runs the two external stages in order: the generation
// prompt depends on the analysis text, so they cannot be parallel. The
// returned avatar URL points at a locally persisted copy; the
// provider's URL is short-lived and is never stored.
func (p *Pipeline) GeneratePreview(ctx context.Context, uploadID int64, gender, customPrompt string) (*PreviewResult, error) {
	upload, err := p.db.GetUpload(ctx, uploadID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, fmt.Errorf("failed to load upload: %w", err)
	}

	imagePath, err := p.store.Resolve(upload.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to locate stored upload: %w", err)
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored upload: %w", err)
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire generation slot: %w", err)
	}
	defer p.sem.Release(1)

	analysisCtx, cancel := context.WithTimeout(ctx, p.opts.AnalysisTimeout)
	analysis, err := p.ai.AnalyzePhoto(analysisCtx, imageData, upload.FileType)
	cancel()
	if err != nil {
		return nil, &ExternalError{Stage: StageAnalysis, Err: err}
	}

	prompt := BuildPrompt(gender, analysis, customPrompt)

	genCtx, cancel := context.WithTimeout(ctx, p.opts.GenerationTimeout)
	remoteURL, err := p.ai.GenerateImage(genCtx, prompt)
	cancel()
	if err != nil {
		return nil, &ExternalError{Stage: StageGeneration, Err: err}
	}

	dlCtx, cancel := context.WithTimeout(ctx, p.opts.GenerationTimeout)
	imageBytes, err := p.ai.DownloadImage(dlCtx, remoteURL)
	cancel()
	if err != nil {
		return nil, &ExternalError{Stage: StageDownload, Err: err}
	}

	if !p.opts.KeepGenerated {
		if err := p.store.PurgeGenerated(uploadID); err != nil {
			log.Printf("Warning: failed to purge previous generations for upload %d: %v", uploadID, err)
		}
	}

	storedName, err := p.store.SaveGenerated(uploadID, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to store generated image: %w", err)
	}

	return &PreviewResult{
		AvatarURL:        "/uploads/" + filepath.ToSlash(storedName),
		OriginalImageURL: "/uploads/" + upload.StoragePath,
		Analysis:         analysis,
		Prompt:           prompt,
	}, nil
}

// SubmitOrder re-validates the contact fields (client checks are not a
// trust boundary) and persists the order with status "pending".
func (p *Pipeline) SubmitOrder(ctx context.Context, req models.SubmitOrderRequest) (*models.Order, error) {
	contact := validate.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	fields := contact.Validate()
	if req.OriginalImageURL == "" {
		fields["originalImageUrl"] = "original image URL is required"
	}
	if req.GeneratedAvatarURL == "" {
		fields["generatedAvatarUrl"] = "generated avatar URL is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	order := &models.Order{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		OriginalImageURL:   req.OriginalImageURL,
		GeneratedAvatarURL: req.GeneratedAvatarURL,
	}
	if req.Prompt != "" {
		order.Prompt = sql.NullString{String: req.Prompt, Valid: true}
	}

	created, err := p.db.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	return created, nil
}

func (p *Pipeline) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := p.db.GetOrder(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (p *Pipeline) ListOrders(ctx context.Context) ([]models.Order, error) {
	return p.db.ListOrders(ctx)
}

// UpdateOrderStatus is the administrative override. Any non-empty
// status is accepted; there is no transition table.
func (p *Pipeline) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	if status == "" {
		return nil, &ValidationError{Fields: map[string]string{"status": "status is required"}}
	}

	order, err := p.db.UpdateOrderStatus(ctx, id, status)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}
