package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims the storefront reads from an upstream access
// token. The signature is never checked here; the shop API does that.
type TokenClaims struct {
	UserID int64  `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// InspectToken decodes the token payload without verifying it.
func InspectToken(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return claims, nil
}

// Expiry returns the exp claim when the token carries one.
func Expiry(token string) (time.Time, bool) {
	claims, err := InspectToken(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// IsExpired reports whether the token's exp lies before now. Opaque tokens
// and tokens without exp are never considered expired.
func IsExpired(token string, now time.Time) bool {
	exp, ok := Expiry(token)
	return ok && !exp.After(now)
}

// SessionTTL is how long persisted auth state should live: until the token
// expires, capped at max.
func SessionTTL(token string, now time.Time, max time.Duration) time.Duration {
	exp, ok := Expiry(token)
	if !ok {
		return max
	}
	ttl := exp.Sub(now)
	if ttl <= 0 {
		return 0
	}
	if max > 0 && ttl > max {
		return max
	}
	return ttl
}
