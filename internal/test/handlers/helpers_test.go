package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"avatar-wizard-backend/internal/avatar"
	"avatar-wizard-backend/internal/database"
	"avatar-wizard-backend/internal/handlers"
	"avatar-wizard-backend/internal/models"
	"avatar-wizard-backend/internal/storage"
	"avatar-wizard-backend/internal/wizard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

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

type fakeAI struct {
	analysis    string
	generateErr error
}

func (f *fakeAI) AnalyzePhoto(_ context.Context, _ []byte, _ string) (string, error) {
	return f.analysis, nil
}

func (f *fakeAI) GenerateImage(_ context.Context, _ string) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return "https://images.example.com/out.png", nil
}

func (f *fakeAI) DownloadImage(_ context.Context, _ string) ([]byte, error) {
	return []byte("generated png"), nil
}

type testEnv struct {
	router   *gin.Engine
	db       *fakeDB
	ai       *fakeAI
	store    *storage.Store
	sessions *wizard.Store
}

// newTestEnv wires the real pipeline and handlers onto the same routes
// main registers, with the external surfaces faked.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	db := newFakeDB()
	ai := &fakeAI{analysis: "short brown hair, glasses"}
	pipeline := avatar.NewPipeline(db, ai, store, avatar.Options{KeepGenerated: true})
	sessions := wizard.NewStore(time.Hour)

	uploadHandler := handlers.NewUploadHandler(pipeline, sessions)
	avatarHandler := handlers.NewAvatarHandler(pipeline, sessions)
	ordersHandler := handlers.NewOrdersHandler(pipeline, sessions)
	wizardHandler := handlers.NewWizardHandler(sessions)
	filesHandler := handlers.NewFilesHandler(store)

	router := gin.New()
	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api")
	{
		api.POST("/upload", uploadHandler.Upload)
		api.POST("/generate-avatar", avatarHandler.Generate)
		api.POST("/submit-order", ordersHandler.SubmitOrder)

		api.GET("/wizard", wizardHandler.GetState)
		api.POST("/wizard/advance", wizardHandler.Advance)
		api.POST("/wizard/retreat", wizardHandler.Retreat)
		api.POST("/wizard/reset", wizardHandler.Reset)
		api.POST("/wizard/confirm-preview", wizardHandler.ConfirmPreview)
		api.POST("/wizard/contact", wizardHandler.SetContact)

		api.GET("/orders", ordersHandler.ListOrders)
		api.GET("/orders/:id", ordersHandler.GetOrder)
		api.PATCH("/orders/:id/status", ordersHandler.UpdateStatus)
	}

	router.GET("/uploads/*filepath", filesHandler.Serve)

	return &testEnv{
		router:   router,
		db:       db,
		ai:       ai,
		store:    store,
		sessions: sessions,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, jsonRequest(t, "POST", path, body))
}

// multipartUpload builds a multipart body with an explicit part
// content type, the way browsers send file inputs.
func multipartUpload(t *testing.T, fieldName, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName)}
	header["Content-Type"] = []string{contentType}

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func (e *testEnv) uploadFile(t *testing.T, fileName, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, formContentType := multipartUpload(t, "file", fileName, contentType, data)
	req := httptest.NewRequest("POST", "/api/upload", body)
	req.Header.Set("Content-Type", formContentType)
	return e.do(t, req)
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
