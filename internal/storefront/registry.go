package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pcforge/storefront/pkg/auth/session"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/metrics"
	"github.com/pcforge/storefront/pkg/shopapi"
	"golang.org/x/sync/singleflight"
)

const defaultIdleTimeout = 30 * time.Minute

// RegistryParams groups dependencies for the session registry.
type RegistryParams struct {
	Client      *shopapi.Client
	Persistence session.Store
	AssetHost   string
	Logger      *logger.Logger
	Metrics     *metrics.SessionMetrics
	IdleTimeout time.Duration
	MaxTTL      time.Duration
	Now         func() time.Time
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry keeps live sessions in memory keyed by session id. Persisted
// auth outlives eviction: an evicted id is rebuilt and restored on its next
// request.
type Registry struct {
	params RegistryParams
	group  singleflight.Group

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop client is required")
	}
	if params.Persistence == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session persistence is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.IdleTimeout <= 0 {
		params.IdleTimeout = defaultIdleTimeout
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Registry{params: params, sessions: map[string]*entry{}}, nil
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Get returns the live session for id, building and restoring it when it is
// not in memory. Concurrent first requests for one id share a single build,
// which runs detached from any one caller's cancellation.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if s := r.touch(id); s != nil {
		return s, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		// shared by every waiter, so the first caller's cancellation must not end it
		ctx := context.WithoutCancel(ctx)
		if s := r.touch(id); s != nil {
			return s, nil
		}
		s, err := NewSession(SessionParams{
			ID:          id,
			Client:      r.params.Client,
			Persistence: r.params.Persistence,
			AssetHost:   r.params.AssetHost,
			Logger:      r.params.Logger,
			MaxTTL:      r.params.MaxTTL,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Restore(ctx); err != nil {
			r.params.Logger.Warn(r.params.Logger.WithSessionID(ctx, id), "session restore failed")
			return nil, err
		}
		r.mu.Lock()
		r.sessions[id] = &entry{session: s, lastSeen: r.params.Now()}
		active := len(r.sessions)
		r.mu.Unlock()
		r.params.Metrics.SetActive(active)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Drop forgets a session, typically after logout.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	active := len(r.sessions)
	r.mu.Unlock()
	r.params.Metrics.SetActive(active)
}

// Prune evicts sessions idle for longer than the idle timeout and reports
// how many were evicted.
func (r *Registry) Prune() int {
	cutoff := r.params.Now().Add(-r.params.IdleTimeout)
	r.mu.Lock()
	evicted := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	active := len(r.sessions)
	r.mu.Unlock()

	r.params.Metrics.SetActive(active)
	r.params.Metrics.AddEvicted(evicted)
	return evicted
}

// Run prunes on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(); n > 0 {
				r.params.Logger.Debug(r.params.Logger.WithField(ctx, "evicted", n), "idle sessions pruned")
			}
		}
	}
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) touch(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil
	}
	e.lastSeen = r.params.Now()
	return e.session
}
