package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pcforge/storefront/pkg/auth/session"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/stretchr/testify/require"
)

const testToken = "tok-1"

// upstream is a minimal shop API: authenticated collection routes answer
// only when the bearer token matches.
type upstream struct {
	mu     sync.Mutex
	routes map[string]string
	hits   map[string]int
}

func newUpstream(t *testing.T) (*upstream, *shopapi.Client) {
	t.Helper()
	u := &upstream{
		hits: map[string]int{},
		routes: map[string]string{
			"POST /api/auth/login": `{"token":"` + testToken + `","user":{"id":7,"name":"Ann","role":"client"}}`,
			"GET /api/cart":        `{"cart":[{"id":1,"product_id":10,"quantity":2,"Product":{"id":10,"name":"CPU","price":"100.00","stock":5,"category_id":1}}]}`,
			"GET /api/wishlist":    `[{"id":3,"product_id":11,"Product":{"id":11,"name":"GPU","price":"500"}}]`,
			"GET /api/compare":     `{"CPU":[{"id":10,"name":"CPU","price":"100","category_id":1,"Category":{"id":1,"name":"CPU"}}]}`,
			"GET /api/pcbuild":     `[]`,
			"GET /api/pcbuild/4":   `{"id":4,"name":"Rig","PcBuildDetails":[{"id":1,"product_id":10,"Product":{"id":10,"name":"CPU","price":"100","category_id":1}},{"id":2,"product_id":12,"Product":{"id":12,"name":"CPU2","price":"150","category_id":1}}]}`,
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		u.mu.Lock()
		u.hits[key]++
		body, ok := u.routes[key]
		u.mu.Unlock()
		if key != "POST /api/auth/login" && r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"unauthorized"}`))
			return
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	client, err := shopapi.NewClient(srv.URL)
	require.NoError(t, err)
	return u, client
}

func (u *upstream) count(key string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[key]
}

type memoryPersistence struct {
	mu     sync.Mutex
	states map[string]session.State
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{states: map[string]session.State{}}
}

func (m *memoryPersistence) Load(_ context.Context, sid string) (session.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[sid]
	if !ok {
		return session.State{}, session.ErrNoSession
	}
	return st, nil
}

func (m *memoryPersistence) Save(_ context.Context, sid string, st session.State, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[sid] = st
	return nil
}

func (m *memoryPersistence) Clear(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sid)
	return nil
}
