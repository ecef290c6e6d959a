// Package handler wires the matrix endpoints to the matrix service. It
// stays thin: decode, delegate, encode.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/service"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/search"
	dErrors "github.com/anahernandes-vtex/rbaciam-novo/pkg/domerrors"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/httputil"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/requestcontext"
)

// maxUploadBytes bounds the CSV upload size.
const maxUploadBytes = 10 << 20

// Service defines the matrix operations the handlers depend on.
type Service interface {
	Ingest(ctx context.Context, r io.Reader) (service.Report, error)
	Matrix(ctx context.Context) (matrix.Matrix, error)
	Team(ctx context.Context, name string) (matrix.TeamEntry, error)
	Suggest(ctx context.Context, query string) ([]search.Match, error)
	LastUpdate(ctx context.Context) (time.Time, error)
}

// Handler serves the matrix HTTP API.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a matrix handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the authenticated lookup endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/matrix", h.HandleMatrix)
	r.Get("/suggest", h.HandleSuggest)
	r.Get("/teams/{name}", h.HandleTeam)
}

// RegisterAdmin mounts the admin-only endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/upload", h.HandleUpload)
	r.Get("/admin/last-update", h.HandleLastUpdate)
}

// HandleMatrix handles GET /matrix.
func (h *Handler) HandleMatrix(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Matrix(r.Context())
	if err != nil {
		h.logError(r, "matrix read failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

// HandleSuggest handles GET /suggest?q=.
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	matches, err := h.service.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logError(r, "suggest failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SuggestResponse{Matches: FromMatches(matches)})
}

// HandleTeam handles GET /teams/{name}.
func (h *Handler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	entry, err := h.service.Team(r.Context(), name)
	if err != nil {
		if dErrors.CodeOf(err) != dErrors.CodeNotFound {
			h.logError(r, "team lookup failed", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTeamEntry(entry))
}

// HandleUpload handles POST /admin/upload (multipart form, field "file").
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "missing file field"))
		return
	}
	defer file.Close()

	report, err := h.service.Ingest(ctx, file)
	if err != nil {
		h.logError(r, "matrix upload failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "matrix uploaded",
		"request_id", requestcontext.RequestID(ctx),
		"user", requestcontext.UserEmail(ctx),
		"teams", report.Teams,
		"accesses", report.Accesses,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleLastUpdate handles GET /admin/last-update.
func (h *Handler) HandleLastUpdate(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.LastUpdate(r.Context())
	if err != nil {
		h.logError(r, "last update read failed", err)
		httputil.WriteError(w, err)
		return
	}

	resp := LastUpdateResponse{}
	if !t.IsZero() {
		stamp := t.Format(time.RFC3339)
		resp.LastUpdate = &stamp
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
}
