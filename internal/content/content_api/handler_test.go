package content_api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"evenza/internal/content"
	"evenza/internal/content/content_api"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateContent(ctx context.Context, c models.Content) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockDBLayer) GetContentByID(ctx context.Context, id string) (*models.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Content), args.Error(1)
}

func (m *MockDBLayer) GetContentBySlug(ctx context.Context, slug string) (*models.Content, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Content), args.Error(1)
}

func (m *MockDBLayer) ListContents(ctx context.Context, publishedOnly bool) ([]models.Content, error) {
	args := m.Called(ctx, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Content), args.Error(1)
}

func (m *MockDBLayer) UpdateContent(ctx context.Context, c models.Content) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteContent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) UpsertSetting(ctx context.Context, setting models.Setting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

func (m *MockDBLayer) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Setting), args.Error(1)
}

func (m *MockDBLayer) ListSettings(ctx context.Context) ([]models.Setting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Setting), args.Error(1)
}

func newHandler(db *MockDBLayer) *content_api.Handler {
	log := logger.NewLogger()
	return content_api.NewHandler(content.NewContentService(db, log), log)
}

func paramRequest(method, target string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetSettingReturnsStoredValue(t *testing.T) {
	db := new(MockDBLayer)
	h := newHandler(db)

	db.On("GetSetting", mock.Anything, "site_name").Return(&models.Setting{
		Key:       "site_name",
		Value:     "Evenza",
		UpdatedAt: time.Now(),
	}, nil)

	rec := httptest.NewRecorder()
	h.GetSetting(rec, paramRequest(http.MethodGet, "/api/admin/settings/site_name", map[string]string{"key": "site_name"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Evenza")
}

func TestGetSettingUnknownKey(t *testing.T) {
	db := new(MockDBLayer)
	h := newHandler(db)

	db.On("GetSetting", mock.Anything, "missing").Return(nil, registration.ErrNotFound)

	rec := httptest.NewRecorder()
	h.GetSetting(rec, paramRequest(http.MethodGet, "/api/admin/settings/missing", map[string]string{"key": "missing"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPublishedHidesUnpublishedPage(t *testing.T) {
	db := new(MockDBLayer)
	h := newHandler(db)

	db.On("GetContentBySlug", mock.Anything, "draft-page").Return(&models.Content{
		ID:        "ct-1",
		Slug:      "draft-page",
		Title:     "Draft",
		Published: false,
	}, nil)

	rec := httptest.NewRecorder()
	h.GetPublished(rec, paramRequest(http.MethodGet, "/api/content/draft-page", map[string]string{"slug": "draft-page"}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
