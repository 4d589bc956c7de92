package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcforge/storefront/api/middleware"
	"github.com/pcforge/storefront/internal/storefront"
	"github.com/pcforge/storefront/pkg/auth/session"
	"github.com/pcforge/storefront/pkg/config"
	"github.com/pcforge/storefront/pkg/logger"
	pkgredis "github.com/pcforge/storefront/pkg/redis"
	"github.com/pcforge/storefront/pkg/shopapi"
)

type stubStore struct {
	mu     sync.Mutex
	values map[string]string
	counts map[string]int64
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}, counts: map[string]int64{}}
}

func (s *stubStore) Ping(context.Context) error { return nil }

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (s *stubStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	switch v := value.(type) {
	case string:
		s.values[key] = v
	case []byte:
		s.values[key] = string(v)
	}
	return true, nil
}

func (s *stubStore) IdempotencyKey(scope, key string) string { return "idem:" + scope + ":" + key }

func (s *stubStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func (s *stubStore) RateLimitKey(scope string) string { return "rl:" + scope }

type memoryPersistence struct {
	mu     sync.Mutex
	states map[string]session.State
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

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test"},
		Session: config.SessionConfig{CookieName: "sf_test"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/category":
			_, _ = w.Write([]byte(`[{"id":1,"name":"CPU"},{"id":2,"name":"GPU"}]`))
			return
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"token":"opaque-token","user":{"id":7,"name":"Ann","email":"ann@example.com","role":"client"}}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(upstream.Close)

	client, err := shopapi.NewClient(upstream.URL)
	require.NoError(t, err)
	registry, err := storefront.NewRegistry(storefront.RegistryParams{
		Client:      client,
		Persistence: &memoryPersistence{states: map[string]session.State{}},
		Logger:      logger.Nop(),
	})
	require.NoError(t, err)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	return NewRouter(testConfig(), logger.Nop(), newStubStore(), registry,
		middleware.NewCookieStore("0123456789abcdef0123456789abcdef", 3600, false), metrics)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "test", rec.Header().Get("X-Storefront-Env"), path)
	}
}

func TestMetricsRoute(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestCatalogIsPublicAndMintsSessionCookie(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var categories []shopapi.Category
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &categories))
	assert.Len(t, categories, 2)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "sf_test", cookies[0].Name)
}

func TestAnonymousSessionIsRejectedFromSignedInRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/cart"},
		{http.MethodGet, "/api/wishlist"},
		{http.MethodGet, "/api/builds/draft"},
		{http.MethodPost, "/api/checkout"},
		{http.MethodGet, "/api/admin/dashboard"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		env := decode(t, rec)
		require.NotNil(t, env.Error, tc.path)
		assert.Equal(t, "Please log in to continue.", env.Error.Message, tc.path)
	}
}

func TestMeReportsAnonymousSession(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Authenticated bool `json:"authenticated"`
		CartCount     int  `json:"cart_count"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &me))
	assert.False(t, me.Authenticated)
	assert.Zero(t, me.CartCount)
}

func TestChatHistoryStartsWithGreeting(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chatbot/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var messages []struct {
		Sender string `json:"sender"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "bot", messages[0].Sender)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sf_test" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func authenticated(t *testing.T, router http.Handler, cookie *http.Cookie) bool {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &me))
	return me.Authenticated
}

func TestLoginIssuesNewSessionID(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	before := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ann@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(before)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	after := sessionCookie(t, rec)

	assert.NotEqual(t, before.Value, after.Value)
	assert.True(t, authenticated(t, router, after))
	assert.False(t, authenticated(t, router, before), "pre-login id must stay anonymous")
}

func TestFailedLoginKeepsSessionCookie(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"not-an-email","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sf_test" {
			assert.False(t, authenticated(t, router, c))
		}
	}
}
