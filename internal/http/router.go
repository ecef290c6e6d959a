// Package httpapi composes the HTTP surface: public lookup routes,
// admin routes behind the allow-list, and the operational endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/auth"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/handler"
	"github.com/anahernandes-vtex/rbaciam-novo/internal/platform/middleware"
)

// NewRouter wires all endpoints. The lookup routes require a valid
// user token; the admin routes additionally require allow-list
// membership. Health and metrics stay unauthenticated for probes and
// scrapers.
func NewRouter(
	h *handler.Handler,
	validator auth.TokenValidator,
	admins auth.AdminChecker,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireUser(validator, logger))
		h.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(admins, logger))
			h.RegisterAdmin(r)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
