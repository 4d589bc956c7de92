package session

import (
	"context"
	"errors"
	"time"

	"github.com/pcforge/storefront/pkg/shopapi"
)

// ErrNoSession is returned by Load when nothing is persisted.
var ErrNoSession = errors.New("no persisted session")

// State is the auth data that survives a restart: the upstream token and
// the serialized user.
type State struct {
	Token     string       `json:"token"`
	User      shopapi.User `json:"user"`
	ExpiresAt time.Time    `json:"expires_at,omitempty"`
}

// Store persists auth state per session id.
type Store interface {
	Load(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, state State, ttl time.Duration) error
	Clear(ctx context.Context, sessionID string) error
}
