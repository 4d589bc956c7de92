package middleware

import (
	"context"

	"github.com/pcforge/storefront/internal/storefront"
)

type contextKey string

const ctxSession contextKey = "storefront_session"

// WithSession injects the visitor's storefront session into the context.
func WithSession(ctx context.Context, s *storefront.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, s)
}

func SessionFromContext(ctx context.Context) *storefront.Session {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxSession).(*storefront.Session); ok {
		return v
	}
	return nil
}

// UserIDFromContext returns the signed-in user's id, or 0.
func UserIDFromContext(ctx context.Context) int64 {
	s := SessionFromContext(ctx)
	if s == nil {
		return 0
	}
	if user, ok := s.Auth.User(); ok {
		return user.ID
	}
	return 0
}

func RoleFromContext(ctx context.Context) string {
	s := SessionFromContext(ctx)
	if s == nil {
		return ""
	}
	if user, ok := s.Auth.User(); ok {
		return string(user.Role)
	}
	return ""
}
