package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redisclient "github.com/pcforge/storefront/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// RedisStore keeps auth state in redis so it survives a server restart.
type RedisStore struct {
	store sessionStore
	keyer sessionKeyer
}

// NewRedisStore constructs a redis-backed Store.
func NewRedisStore(client *redisclient.Client) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStore{store: client, keyer: client}, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (State, error) {
	if strings.TrimSpace(sessionID) == "" {
		return State{}, ErrNoSession
	}
	raw, err := s.store.Get(ctx, s.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return State{}, ErrNoSession
		}
		return State{}, err
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return State{}, fmt.Errorf("decoding session state: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, state State, ttl time.Duration) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if ttl > 0 {
		state.ExpiresAt = time.Now().Add(ttl).UTC()
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}
	return s.store.Set(ctx, s.keyer.SessionKey(sessionID), string(payload), ttl)
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.store.Del(ctx, s.keyer.SessionKey(sessionID))
}
