package middleware

import (
	"net/http"

	"github.com/pcforge/storefront/api/responses"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
)

// RequireAuth rejects requests whose session is not signed in.
func RequireAuth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromContext(r.Context())
			if s == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session middleware not installed"))
				return
			}
			if !s.Auth.IsAuthenticated() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Please log in to continue."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
