package avatar_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avatar-wizard-backend/internal/avatar"
	"avatar-wizard-backend/internal/database"
	"avatar-wizard-backend/internal/models"
	"avatar-wizard-backend/internal/storage"
)

// fakeDB is an in-memory stand-in for the postgres client.
type fakeDB struct {
	uploads map[int64]*models.Upload
	orders  map[int64]*models.Order
	nextID  int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		uploads: make(map[int64]*models.Upload),
		orders:  make(map[int64]*models.Order),
	}
}

func (f *fakeDB) CreateUpload(_ context.Context, upload *models.Upload) (*models.Upload, error) {
	f.nextID++
	created := *upload
	created.ID = f.nextID
	created.CreatedAt = time.Now()
	f.uploads[created.ID] = &created
	return &created, nil
}

func (f *fakeDB) GetUpload(_ context.Context, id int64) (*models.Upload, error) {
	upload, ok := f.uploads[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return upload, nil
}

func (f *fakeDB) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	f.nextID++
	created := *order
	created.ID = f.nextID
	created.Status = "pending"
	created.CreatedAt = time.Now()
	f.orders[created.ID] = &created
	return &created, nil
}

func (f *fakeDB) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return order, nil
}

func (f *fakeDB) ListOrders(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (f *fakeDB) UpdateOrderStatus(_ context.Context, id int64, status string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	order.Status = status
	return order, nil
}

// fakeAI stubs both external stages independently.
type fakeAI struct {
	analysis    string
	analysisErr error
	generateErr error
	downloadErr error

	prompts   []string
	generated int
}

func (f *fakeAI) AnalyzePhoto(_ context.Context, _ []byte, _ string) (string, error) {
	if f.analysisErr != nil {
		return "", f.analysisErr
	}
	return f.analysis, nil
}

func (f *fakeAI) GenerateImage(_ context.Context, prompt string) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	f.prompts = append(f.prompts, prompt)
	f.generated++
	return fmt.Sprintf("https://images.example.com/%d.png", f.generated), nil
}

func (f *fakeAI) DownloadImage(_ context.Context, _ string) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return []byte("generated png"), nil
}

func newTestPipeline(t *testing.T, ai *fakeAI, keep bool) (*avatar.Pipeline, *fakeDB, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	db := newFakeDB()
	pipeline := avatar.NewPipeline(db, ai, store, avatar.Options{KeepGenerated: keep})
	return pipeline, db, store
}

func submitTestUpload(t *testing.T, pipeline *avatar.Pipeline) *models.Upload {
	t.Helper()
	upload, err := pipeline.SubmitUpload(context.Background(), "photo.png", "image/png",
		int64(len("photo bytes")), strings.NewReader("photo bytes"))
	require.NoError(t, err)
	return upload
}

func TestSubmitUpload_RejectsDisallowedMimeType(t *testing.T) {
	pipeline, db, _ := newTestPipeline(t, &fakeAI{}, true)

	for _, mime := range []string{"image/webp", "application/pdf", "text/html", ""} {
		_, err := pipeline.SubmitUpload(context.Background(), "file.bin", mime, 10, strings.NewReader("data"))
		assert.ErrorIs(t, err, avatar.ErrInvalidFileType, "mime %q", mime)
	}
	assert.Empty(t, db.uploads)
}

func TestSubmitUpload_RejectsOversizedFile(t *testing.T) {
	pipeline, db, _ := newTestPipeline(t, &fakeAI{}, true)

	_, err := pipeline.SubmitUpload(context.Background(), "big.png", "image/png",
		10<<20+1, bytes.NewReader(nil))
	assert.ErrorIs(t, err, avatar.ErrFileTooLarge)
	assert.Empty(t, db.uploads)
}

func TestSubmitUpload_OversizedStreamRejectedEvenWithSmallDeclaredSize(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, &fakeAI{}, true)

	big := bytes.Repeat([]byte("x"), 10<<20+1)
	_, err := pipeline.SubmitUpload(context.Background(), "big.png", "image/png",
		100, bytes.NewReader(big))
	assert.ErrorIs(t, err, avatar.ErrFileTooLarge)
}

func TestSubmitUpload_RepeatedCallsProduceDistinctRecords(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, &fakeAI{}, true)

	first := submitTestUpload(t, pipeline)
	second := submitTestUpload(t, pipeline)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.StoragePath, second.StoragePath)
}

func TestGeneratePreview_UploadNotFound(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, &fakeAI{}, true)

	_, err := pipeline.GeneratePreview(context.Background(), 999, "female", "")
	assert.ErrorIs(t, err, avatar.ErrUploadNotFound)
}

func TestGeneratePreview_HappyPath(t *testing.T) {
	ai := &fakeAI{analysis: "short brown hair, glasses"}
	pipeline, _, store := newTestPipeline(t, ai, true)
	upload := submitTestUpload(t, pipeline)

	result, err := pipeline.GeneratePreview(context.Background(), upload.ID, "female", "in a tuxedo")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.AvatarURL, "/uploads/generated/"))
	assert.Equal(t, "/uploads/"+upload.StoragePath, result.OriginalImageURL)
	assert.Equal(t, "short brown hair, glasses", result.Analysis)

	// The persisted copy is servable; the provider URL is not stored.
	_, err = store.Resolve(strings.TrimPrefix(result.AvatarURL, "/uploads/"))
	assert.NoError(t, err)
	assert.NotContains(t, result.AvatarURL, "images.example.com")
}

func TestGeneratePreview_PromptFoldsAllInputs(t *testing.T) {
	ai := &fakeAI{analysis: "short brown hair, glasses"}
	pipeline, _, _ := newTestPipeline(t, ai, true)
	upload := submitTestUpload(t, pipeline)

	result, err := pipeline.GeneratePreview(context.Background(), upload.ID, "male", "wearing a red scarf")
	require.NoError(t, err)

	require.Len(t, ai.prompts, 1)
	prompt := ai.prompts[0]
	assert.Equal(t, result.Prompt, prompt)
	assert.Contains(t, prompt, "MALE CHARACTER")
	assert.Contains(t, prompt, "only ONE 3D figurine")
	assert.Contains(t, prompt, "short brown hair, glasses")
	assert.Contains(t, prompt, "wearing a red scarf")
}

func TestGeneratePreview_RegenerationYieldsDistinctURLs(t *testing.T) {
	ai := &fakeAI{analysis: "a person"}
	pipeline, _, store := newTestPipeline(t, ai, true)
	upload := submitTestUpload(t, pipeline)

	first, err := pipeline.GeneratePreview(context.Background(), upload.ID, "female", "as a pirate")
	require.NoError(t, err)
	second, err := pipeline.GeneratePreview(context.Background(), upload.ID, "female", "as an astronaut")
	require.NoError(t, err)

	assert.NotEqual(t, first.AvatarURL, second.AvatarURL)

	// Default retention keeps earlier generations on disk.
	_, err = store.Resolve(strings.TrimPrefix(first.AvatarURL, "/uploads/"))
	assert.NoError(t, err)
}

func TestGeneratePreview_PurgePreviousRetention(t *testing.T) {
	ai := &fakeAI{analysis: "a person"}
	pipeline, _, store := newTestPipeline(t, ai, false)
	upload := submitTestUpload(t, pipeline)

	first, err := pipeline.GeneratePreview(context.Background(), upload.ID, "female", "")
	require.NoError(t, err)
	second, err := pipeline.GeneratePreview(context.Background(), upload.ID, "female", "with a hat")
	require.NoError(t, err)

	_, err = store.Resolve(strings.TrimPrefix(first.AvatarURL, "/uploads/"))
	assert.Error(t, err, "previous generation should be purged")
	_, err = store.Resolve(strings.TrimPrefix(second.AvatarURL, "/uploads/"))
	assert.NoError(t, err)
}

func TestGeneratePreview_StageErrorsAreTagged(t *testing.T) {
	tests := []struct {
		name  string
		ai    *fakeAI
		stage string
	}{
		{"analysis failure", &fakeAI{analysisErr: errors.New("rate limited")}, avatar.StageAnalysis},
		{"generation failure", &fakeAI{analysis: "a person", generateErr: errors.New("bad prompt")}, avatar.StageGeneration},
		{"download failure", &fakeAI{analysis: "a person", downloadErr: errors.New("gone")}, avatar.StageDownload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline, _, _ := newTestPipeline(t, tt.ai, true)
			upload := submitTestUpload(t, pipeline)

			_, err := pipeline.GeneratePreview(context.Background(), upload.ID, "", "")

			var extErr *avatar.ExternalError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.stage, extErr.Stage)
		})
	}
}

func TestSubmitOrder_Valid(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, &fakeAI{}, true)

	order, err := pipeline.SubmitOrder(context.Background(), models.SubmitOrderRequest{
		FirstName:          "Jane",
		LastName:           "Doe",
		Email:              "jane@x.com",
		Phone:              "+1 555 1234",
		OriginalImageURL:   "/uploads/photo.png",
		GeneratedAvatarURL: "/uploads/generated/1_1.png",
		Prompt:             "in a tuxedo",
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", order.Status)
	assert.NotZero(t, order.ID)

	fetched, err := pipeline.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", fetched.Status)
}

func TestSubmitOrder_ServerSideValidation(t *testing.T) {
	pipeline, db, _ := newTestPipeline(t, &fakeAI{}, true)

	_, err := pipeline.SubmitOrder(context.Background(), models.SubmitOrderRequest{
		FirstName:          "Jane",
		LastName:           "Doe",
		Email:              "not-an-email",
		Phone:              "+1 555 1234",
		OriginalImageURL:   "/uploads/photo.png",
		GeneratedAvatarURL: "/uploads/generated/1_1.png",
	})

	var valErr *avatar.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields, "email")
	assert.Empty(t, db.orders)
}

func TestSubmitOrder_RequiresImageURLs(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, &fakeAI{}, true)

	_, err := pipeline.SubmitOrder(context.Background(), models.SubmitOrderRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@x.com",
		Phone:     "+1 555 1234",
	})

	var valErr *avatar.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields, "originalImageUrl")
	assert.Contains(t, valErr.Fields, "generatedAvatarUrl")
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, &fakeAI{}, true)

	_, err := pipeline.UpdateOrderStatus(context.Background(), 999, "completed")
	assert.ErrorIs(t, err, avatar.ErrOrderNotFound)
}

func TestUpdateOrderStatus_OverwritesUnconditionally(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, &fakeAI{}, true)

	order, err := pipeline.SubmitOrder(context.Background(), models.SubmitOrderRequest{
		FirstName:          "Jane",
		LastName:           "Doe",
		Email:              "jane@x.com",
		Phone:              "+1 555 1234",
		OriginalImageURL:   "/uploads/photo.png",
		GeneratedAvatarURL: "/uploads/generated/1_1.png",
	})
	require.NoError(t, err)

	updated, err := pipeline.UpdateOrderStatus(context.Background(), order.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)

	// No transition table: moving backwards is accepted.
	updated, err = pipeline.UpdateOrderStatus(context.Background(), order.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, "pending", updated.Status)
}
