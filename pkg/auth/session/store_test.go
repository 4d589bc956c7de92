package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pcforge/storefront/pkg/shopapi"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) SessionKey(id string) string {
	return "sess:" + id
}

func sampleState() State {
	return State{Token: "tok", User: shopapi.User{ID: 3, Name: "Kim", Role: shopapi.RoleClient}}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := newMockStore()
	store := &RedisStore{store: backend, keyer: backend}

	_, err := store.Load(ctx, "sid")
	require.True(t, errors.Is(err, ErrNoSession))

	require.NoError(t, store.Save(ctx, "sid", sampleState(), time.Hour))
	require.Equal(t, time.Hour, backend.ttls["sess:sid"])

	got, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, "tok", got.Token)
	require.Equal(t, "Kim", got.User.Name)
	require.False(t, got.ExpiresAt.IsZero())

	require.NoError(t, store.Clear(ctx, "sid"))
	_, err = store.Load(ctx, "sid")
	require.True(t, errors.Is(err, ErrNoSession))
}

func TestRedisStoreRejectsEmptyID(t *testing.T) {
	backend := newMockStore()
	store := &RedisStore{store: backend, keyer: backend}
	require.Error(t, store.Save(context.Background(), " ", sampleState(), 0))
	_, err := store.Load(context.Background(), "")
	require.True(t, errors.Is(err, ErrNoSession))
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	backend := newMockStore()
	backend.data["sess:bad"] = "{"
	store := &RedisStore{store: backend, keyer: backend}
	_, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNoSession))
}

func TestNewRedisStoreRequiresClient(t *testing.T) {
	_, err := NewRedisStore(nil)
	require.Error(t, err)
}

func TestFileStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, err := store.Load(ctx, "")
	require.True(t, errors.Is(err, ErrNoSession))

	require.NoError(t, store.Save(ctx, "", sampleState(), 0))
	got, err := store.Load(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "tok", got.Token)
	require.True(t, got.ExpiresAt.IsZero())

	require.NoError(t, store.Clear(ctx, ""))
	require.NoError(t, store.Clear(ctx, ""))
	_, err = store.Load(ctx, "")
	require.True(t, errors.Is(err, ErrNoSession))
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "", sampleState(), time.Minute))
	_, err := store.Load(ctx, "")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Load(ctx, "")
	require.True(t, errors.Is(err, ErrNoSession))
}
