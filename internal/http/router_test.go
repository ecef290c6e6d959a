package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/auth"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/auth/allowlist"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/handler"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/service"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/search"
)

type stubService struct{}

func (stubService) Ingest(context.Context, io.Reader) (service.Report, error) {
	return service.Report{Teams: 1, SavedTo: []string{"memory"}, UpdatedAt: time.Now()}, nil
}

func (stubService) Matrix(context.Context) (matrix.Matrix, error) {
	return matrix.Matrix{}, nil
}

func (stubService) Team(context.Context, string) (matrix.TeamEntry, error) {
	return matrix.TeamEntry{Team: "Billing"}, nil
}

func (stubService) Suggest(context.Context, string) ([]search.Match, error) {
	return nil, nil
}

func (stubService) LastUpdate(context.Context) (time.Time, error) {
	return time.Time{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService("test-signing-key")
	admins := allowlist.NewStatic([]string{"admin@example.com"})
	h := handler.New(stubService{}, logger)
	return NewRouter(h, tokens, admins, logger), tokens
}

func bearer(t *testing.T, tokens *auth.TokenService, email string) string {
	t.Helper()
	token, err := tokens.GenerateToken(email, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_HealthUnauthenticated(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_MetricsUnauthenticated(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LookupRequiresToken(t *testing.T) {
	router, tokens := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matrix", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/matrix", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "ana@example.com"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminRequiresAllowList(t *testing.T) {
	router, tokens := newTestRouter(t)

	// authenticated but not an admin
	req := httptest.NewRequest(http.MethodGet, "/api/admin/last-update", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "ana@example.com"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/last-update", nil)
	req.Header.Set("Authorization", bearer(t, tokens, "admin@example.com"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
