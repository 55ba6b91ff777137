package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evenza/internal/auth"
	"evenza/internal/config"
	"evenza/internal/logger"
	"evenza/internal/models"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:     "test-secret",
		CookieName: "evenza_token",
		TokenTTL:   time.Hour,
	}
}

func testUser(role models.Role) *models.User {
	return &models.User{
		ID:    "user-1",
		Name:  "Test User",
		Email: "test@example.com",
		Role:  role,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testAuthConfig()

	token, err := auth.IssueToken(cfg, testUser(models.RoleAdmin))
	require.NoError(t, err)

	id, err := auth.VerifyToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "test@example.com", id.Email)
	assert.Equal(t, models.RoleAdmin, id.Role)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	cfg := testAuthConfig()

	token, err := auth.IssueToken(cfg, testUser(models.RoleUser))
	require.NoError(t, err)

	other := cfg
	other.Secret = "different-secret"
	_, err = auth.VerifyToken(other, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenTTL = -time.Minute

	token, err := auth.IssueToken(cfg, testUser(models.RoleUser))
	require.NoError(t, err)

	_, err = auth.VerifyToken(cfg, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	cfg := testAuthConfig()
	log := logger.NewLogger()

	handler := auth.Middleware(cfg, log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareAcceptsBearerToken(t *testing.T) {
	cfg := testAuthConfig()
	log := logger.NewLogger()

	token, err := auth.IssueToken(cfg, testUser(models.RoleUser))
	require.NoError(t, err)

	var seen *auth.Identity
	handler := auth.Middleware(cfg, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.UserID)
}

func TestMiddlewareAcceptsCookie(t *testing.T) {
	cfg := testAuthConfig()
	log := logger.NewLogger()

	token, err := auth.IssueToken(cfg, testUser(models.RoleUser))
	require.NoError(t, err)

	handler := auth.Middleware(cfg, log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidsInsufficientRole(t *testing.T) {
	log := logger.NewLogger()

	handler := auth.RequireRole(log, models.RoleAdmin, models.RoleSuperAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{
		UserID: "user-1",
		Role:   models.RoleUser,
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	log := logger.NewLogger()

	handler := auth.RequireRole(log, models.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizePolicy(t *testing.T) {
	admin := &auth.Identity{UserID: "a", Role: models.RoleAdmin}
	user := &auth.Identity{UserID: "u", Role: models.RoleUser}

	assert.True(t, auth.Authorize(admin, models.RoleAdmin, models.RoleSuperAdmin))
	assert.False(t, auth.Authorize(user, models.RoleAdmin, models.RoleSuperAdmin))
	assert.True(t, auth.Authorize(user))
	assert.False(t, auth.Authorize(nil))
}
