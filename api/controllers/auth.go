package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/pcforge/storefront/api/middleware"
	"github.com/pcforge/storefront/api/responses"
	"github.com/pcforge/storefront/api/validators"
	"github.com/pcforge/storefront/internal/auth"
	"github.com/pcforge/storefront/internal/storefront"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionDropper forgets a live session after logout.
type SessionDropper interface {
	Drop(id string)
}

// SessionRotator opens sessions under fresh ids and forgets replaced ones.
type SessionRotator interface {
	Get(ctx context.Context, id string) (*storefront.Session, error)
	Drop(id string)
}

type meResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *shopapi.User `json:"user,omitempty"`
	CartCount     int           `json:"cart_count"`
}

func me(s *storefront.Session) meResponse {
	res := meResponse{CartCount: s.Cart.Count()}
	if user, ok := s.Auth.User(); ok {
		res.Authenticated = true
		res.User = &user
	}
	return res
}

// AuthLogin signs in under a freshly minted session id and re-issues the
// cookie, so an id handed out before sign-in never carries the signed-in
// state. Every container refreshes before the response is written.
func AuthLogin(rotator SessionRotator, cookies sessions.Store, cookieName string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		prev, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id := storefront.NewSessionID()
		next, err := rotator.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if _, err := next.Auth.Login(ctx, body.Email, body.Password); err != nil {
			rotator.Drop(id)
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := middleware.IssueSessionCookie(w, r, cookies, cookieName, id); err != nil {
			_ = next.Auth.Logout(ctx)
			rotator.Drop(id)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if prev.Auth.IsAuthenticated() {
			if err := prev.Auth.Logout(ctx); err != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "previous session not cleared")
			}
		}
		rotator.Drop(prev.ID)
		responses.WriteSuccess(w, me(next))
	}
}

func AuthRegister(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusCreated, func(r *http.Request, s *storefront.Session) (any, error) {
		var body auth.RegisterInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		user, err := s.Auth.Register(r.Context(), body)
		if err != nil {
			return nil, err
		}
		return map[string]any{"user": user, "message": "Registration successful. Please log in."}, nil
	})
}

func AuthLogout(sessions SessionDropper, logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		err := s.Auth.Logout(r.Context())
		if sessions != nil {
			sessions.Drop(s.ID)
		}
		if err != nil {
			return nil, err
		}
		return nil, nil
	})
}

func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		return me(s), nil
	})
}

func AuthUpdateProfile(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		var body auth.ProfileInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		user, err := s.Auth.UpdateProfile(r.Context(), body)
		if err != nil {
			return nil, err
		}
		return user, nil
	})
}
