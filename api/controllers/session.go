package controllers

import (
	"net/http"

	"github.com/pcforge/storefront/api/middleware"
	"github.com/pcforge/storefront/api/responses"
	"github.com/pcforge/storefront/internal/storefront"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
)

// currentSession returns the request's storefront session or writes an
// error when the session middleware did not run.
func currentSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*storefront.Session, bool) {
	s := middleware.SessionFromContext(r.Context())
	if s == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session unavailable"))
		return nil, false
	}
	return s, true
}

// handle adapts a session-scoped handler returning its payload. A nil
// payload answers 204.
func handle(logg *logger.Logger, status int, fn func(r *http.Request, s *storefront.Session) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		data, err := fn(r, s)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if data == nil {
			responses.WriteNoContent(w)
			return
		}
		responses.WriteSuccessStatus(w, status, data)
	}
}
