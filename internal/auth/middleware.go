package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "github.com/anahernandes-vtex/rbaciam-novo/pkg/domerrors"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/httputil"
	"github.com/anahernandes-vtex/rbaciam-novo/pkg/requestcontext"
)

// TokenValidator validates a bearer token string.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// AdminChecker reports whether an email may use the admin endpoints.
type AdminChecker interface {
	Contains(email string) bool
}

// RequireUser authenticates the request and stores the user's email in
// the request context.
func RequireUser(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithUserEmail(ctx, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated users whose email is not on the
// admin allow-list. It must run after RequireUser.
func RequireAdmin(admins AdminChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			email := requestcontext.UserEmail(ctx)
			if email == "" || !admins.Contains(email) {
				logger.WarnContext(ctx, "forbidden - not an admin",
					"user", email,
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin access required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
