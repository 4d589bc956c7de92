package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/pcforge/storefront/api/responses"
	"github.com/pcforge/storefront/internal/storefront"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
)

const sessionIDValue = "sid"

// SessionResolver hands out the live session for a browser session id.
type SessionResolver interface {
	Get(ctx context.Context, id string) (*storefront.Session, error)
}

// Session reads the signed session cookie, minting a new id for first-time
// visitors, and attaches the matching storefront session to the request.
func Session(cookies sessions.Store, cookieName string, resolver SessionResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// a tampered or stale cookie still yields a fresh session
			cookie, _ := cookies.Get(r, cookieName)
			id, _ := cookie.Values[sessionIDValue].(string)
			if id == "" {
				id = storefront.NewSessionID()
				if err := IssueSessionCookie(w, r, cookies, cookieName, id); err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
			}

			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
			}
			s, err := resolver.Get(ctx, id)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithSession(ctx, s)
			if logg != nil {
				if userID := UserIDFromContext(ctx); userID != 0 {
					ctx = logg.WithUserID(ctx, userID)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IssueSessionCookie writes the signed cookie so that it carries id.
func IssueSessionCookie(w http.ResponseWriter, r *http.Request, cookies sessions.Store, cookieName, id string) error {
	cookie, _ := cookies.Get(r, cookieName)
	cookie.Values[sessionIDValue] = id
	if err := cookie.Save(r, w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save session cookie")
	}
	return nil
}

// NewCookieStore builds the signed cookie store carrying the session id.
func NewCookieStore(secret string, maxAgeSeconds int, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
