package storefront

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pcforge/storefront/pkg/auth/session"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/metrics"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newRegistry(t *testing.T, client *shopapi.Client, persist *memoryPersistence, clock *fakeClock) *Registry {
	t.Helper()
	r, err := NewRegistry(RegistryParams{
		Client:      client,
		Persistence: persist,
		Logger:      logger.Nop(),
		Metrics:     metrics.NewSessionMetrics(prometheus.NewRegistry()),
		IdleTimeout: time.Minute,
		Now:         clock.Now,
	})
	require.NoError(t, err)
	return r
}

func TestNewRegistryRequiresDependencies(t *testing.T) {
	_, err := NewRegistry(RegistryParams{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRegistryGetReusesSession(t *testing.T) {
	_, client := newUpstream(t)
	r := newRegistry(t, client, newMemoryPersistence(), &fakeClock{now: time.Now()})
	ctx := context.Background()

	a, err := r.Get(ctx, "one")
	require.NoError(t, err)
	b, err := r.Get(ctx, "one")
	require.NoError(t, err)
	require.Same(t, a, b)

	c, err := r.Get(ctx, "two")
	require.NoError(t, err)
	require.NotSame(t, a, c)
	require.Equal(t, 2, r.Len())

	_, err = r.Get(ctx, "")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRegistryConcurrentGetBuildsOnce(t *testing.T) {
	_, client := newUpstream(t)
	r := newRegistry(t, client, newMemoryPersistence(), &fakeClock{now: time.Now()})

	var wg sync.WaitGroup
	got := make([]*Session, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := r.Get(context.Background(), "shared")
			assert.NoError(t, err)
			got[i] = s
		}(i)
	}
	wg.Wait()
	for _, s := range got[1:] {
		require.Same(t, got[0], s)
	}
	require.Equal(t, 1, r.Len())
}

func TestRegistryPruneEvictsIdleSessions(t *testing.T) {
	_, client := newUpstream(t)
	clock := &fakeClock{now: time.Now()}
	r := newRegistry(t, client, newMemoryPersistence(), clock)
	ctx := context.Background()

	_, err := r.Get(ctx, "idle")
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	_, err = r.Get(ctx, "busy")
	require.NoError(t, err)
	clock.Advance(30 * time.Second)

	require.Equal(t, 1, r.Prune())
	require.Equal(t, 1, r.Len())

	r.Drop("busy")
	require.Zero(t, r.Len())
}

func TestRegistryRestoresEvictedSignedInSession(t *testing.T) {
	up, client := newUpstream(t)
	clock := &fakeClock{now: time.Now()}
	r := newRegistry(t, client, newMemoryPersistence(), clock)
	ctx := context.Background()

	s, err := r.Get(ctx, "sid")
	require.NoError(t, err)
	_, err = s.Auth.Login(ctx, "ann@example.com", "secret")
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	require.Equal(t, 1, r.Prune())

	again, err := r.Get(ctx, "sid")
	require.NoError(t, err)
	require.NotSame(t, s, again)
	require.True(t, again.Auth.IsAuthenticated())
	require.Equal(t, 2, again.Cart.Count())
	require.Equal(t, 2, up.count("GET /api/cart"))
}

// ctxPersistence fails loads whose context is already done.
type ctxPersistence struct {
	*memoryPersistence
}

func (p ctxPersistence) Load(ctx context.Context, sid string) (session.State, error) {
	if err := ctx.Err(); err != nil {
		return session.State{}, err
	}
	return p.memoryPersistence.Load(ctx, sid)
}

func TestRegistryBuildOutlivesCancelledCaller(t *testing.T) {
	client, err := shopapi.NewClient("http://upstream.invalid")
	require.NoError(t, err)
	r, err := NewRegistry(RegistryParams{
		Client:      client,
		Persistence: ctxPersistence{newMemoryPersistence()},
		Logger:      logger.Nop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := r.Get(ctx, "sid")
	require.NoError(t, err)

	again, err := r.Get(context.Background(), "sid")
	require.NoError(t, err)
	require.Same(t, s, again)
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	client, err := shopapi.NewClient("http://upstream.invalid")
	require.NoError(t, err)
	clock := &fakeClock{now: time.Now()}
	r := newRegistry(t, client, newMemoryPersistence(), clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewSessionIDIsUnique(t *testing.T) {
	require.NotEqual(t, NewSessionID(), NewSessionID())
}
