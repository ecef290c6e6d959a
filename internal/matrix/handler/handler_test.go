package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/service"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/search"
	dErrors "github.com/anahernandes-vtex/rbaciam-novo/pkg/domerrors"
)

type fakeService struct {
	matrix     matrix.Matrix
	matrixErr  error
	team       matrix.TeamEntry
	teamErr    error
	matches    []search.Match
	suggestErr error
	report     service.Report
	ingestErr  error
	lastUpdate time.Time
	lastErr    error

	ingested []byte
}

func (f *fakeService) Ingest(_ context.Context, r io.Reader) (service.Report, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return service.Report{}, err
	}
	f.ingested = body
	return f.report, f.ingestErr
}

func (f *fakeService) Matrix(context.Context) (matrix.Matrix, error) {
	return f.matrix, f.matrixErr
}

func (f *fakeService) Team(context.Context, string) (matrix.TeamEntry, error) {
	return f.team, f.teamErr
}

func (f *fakeService) Suggest(context.Context, string) ([]search.Match, error) {
	return f.matches, f.suggestErr
}

func (f *fakeService) LastUpdate(context.Context) (time.Time, error) {
	return f.lastUpdate, f.lastErr
}

func newRouter(svc Service) chi.Router {
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		h.Register(r)
		h.RegisterAdmin(r)
	})
	return r
}

func TestHandleMatrix(t *testing.T) {
	svc := &fakeService{matrix: matrix.Matrix{
		{Team: "Billing", Accesses: []matrix.Access{{System: "AWS", Profile: "dev"}}},
	}}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matrix", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got matrix.Matrix
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Billing", got[0].Team)
}

func TestHandleMatrix_Empty(t *testing.T) {
	svc := &fakeService{matrix: matrix.Matrix{}}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matrix", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleTeam(t *testing.T) {
	svc := &fakeService{team: matrix.TeamEntry{
		Team: "Segurança",
		Accesses: []matrix.Access{
			{System: "Vault", Classification: "Automático por time"},
			{System: "AWS", Classification: "Acesso mediante request"},
			{System: "Legado", Classification: "Ver com o líder"},
		},
	}}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams/Seguran%C3%A7a", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got TeamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Segurança", got.Team)
	require.Len(t, got.Accesses, 3)
	assert.Equal(t, "automatic", got.Accesses[0].AccessType)
	assert.Equal(t, "request", got.Accesses[1].AccessType)
	assert.Equal(t, "other", got.Accesses[2].AccessType)
}

func TestHandleTeam_NotFound(t *testing.T) {
	svc := &fakeService{teamErr: dErrors.New(dErrors.CodeNotFound, "no team found with that name")}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(dErrors.CodeNotFound), body["error"])
}

func TestHandleSuggest(t *testing.T) {
	svc := &fakeService{matches: []search.Match{
		{Name: "Billing", Score: 100, Indices: []int{0, 1}},
		{Name: "Boletos", Score: 37},
	}}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/suggest?q=bi", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got SuggestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Matches, 2)
	assert.Equal(t, "Billing", got.Matches[0].Name)
	assert.Equal(t, []int{0, 1}, got.Matches[0].Indices)
	// nil indices serialize as an empty array, not null
	assert.Equal(t, []int{}, got.Matches[1].Indices)
}

func TestHandleUpload(t *testing.T) {
	updated := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	svc := &fakeService{report: service.Report{
		Teams:     2,
		Accesses:  5,
		SavedTo:   []string{"memory"},
		UpdatedAt: updated,
	}}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "matrix.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Time,Sistema\nBilling,AWS\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Teams)
	assert.Equal(t, 5, got.Accesses)
	assert.Equal(t, []string{"memory"}, got.SavedTo)
	assert.Equal(t, "2026-02-10T09:30:00.000Z", got.UpdatedAt)
	assert.Equal(t, "Time,Sistema\nBilling,AWS\n", string(svc.ingested))
}

func TestHandleUpload_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	newRouter(&fakeService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpload_BadCSV(t *testing.T) {
	svc := &fakeService{ingestErr: dErrors.New(dErrors.CodeBadRequest, "malformed CSV")}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "matrix.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`"broken`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLastUpdate(t *testing.T) {
	svc := &fakeService{lastUpdate: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/last-update", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lastUpdate":"2026-02-10T09:30:00Z"}`, rec.Body.String())
}

func TestHandleLastUpdate_Never(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/last-update", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lastUpdate":null}`, rec.Body.String())
}
