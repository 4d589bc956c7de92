package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	pkgauth "github.com/pcforge/storefront/pkg/auth"
	"github.com/pcforge/storefront/pkg/auth/session"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/pcforge/storefront/pkg/validation"
)

const defaultMaxTTL = 7 * 24 * time.Hour

// API is the slice of the shop client the auth store needs.
type API interface {
	Login(ctx context.Context, email, password string) (shopapi.LoginResult, error)
	Register(ctx context.Context, req shopapi.RegisterRequest) (shopapi.User, error)
	UpdateProfile(ctx context.Context, update shopapi.ProfileUpdate) error
}

// Listener is notified after sign-in (true) and sign-out (false).
type Listener interface {
	OnAuthChange(ctx context.Context, authenticated bool)
}

// StoreParams groups dependencies for the auth store.
type StoreParams struct {
	API         API
	Persistence session.Store
	SessionID   string
	Logger      *logger.Logger
	// MaxTTL caps how long persisted state lives when the token has no exp.
	MaxTTL time.Duration
	Now    func() time.Time
}

// Store owns the signed-in user and token of one session.
type Store struct {
	api     API
	persist session.Store
	sid     string
	logg    *logger.Logger
	maxTTL  time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	token     string
	user      *shopapi.User
	listeners []Listener
}

// NewStore builds an auth store with the required dependencies.
func NewStore(params StoreParams) (*Store, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auth api is required")
	}
	if params.Persistence == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session persistence is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.MaxTTL <= 0 {
		params.MaxTTL = defaultMaxTTL
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Store{
		api:     params.API,
		persist: params.Persistence,
		sid:     params.SessionID,
		logg:    params.Logger,
		maxTTL:  params.MaxTTL,
		now:     params.Now,
	}, nil
}

// Subscribe registers l for auth changes. Listeners run in registration order.
func (s *Store) Subscribe(l Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Restore loads persisted state. It reports whether a session was resumed.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	state, err := s.persist.Load(ctx, s.sid)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	if state.Token == "" || pkgauth.IsExpired(state.Token, s.now()) {
		if clearErr := s.persist.Clear(ctx, s.sid); clearErr != nil {
			s.logg.Warn(ctx, "failed to clear expired session")
		}
		return false, nil
	}

	user := state.User
	s.mu.Lock()
	s.token = state.Token
	s.user = &user
	s.mu.Unlock()

	s.notify(ctx, true)
	return true, nil
}

// Login signs in, persists token and user, then notifies listeners.
func (s *Store) Login(ctx context.Context, email, password string) (shopapi.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return shopapi.User{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return shopapi.User{}, err
	}
	if res.Token == "" || res.User == nil {
		return shopapi.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Login failed. Please check your credentials.")
	}
	user := *res.User

	ttl := pkgauth.SessionTTL(res.Token, s.now(), s.maxTTL)
	if err := s.persist.Save(ctx, s.sid, session.State{Token: res.Token, User: user}, ttl); err != nil {
		return shopapi.User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist session")
	}

	s.mu.Lock()
	s.token = res.Token
	s.user = &user
	s.mu.Unlock()

	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "auth.login")
	s.notify(ctx, true)
	return user, nil
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name            string `json:"name" validate:"notblank"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"notblank"`
	Address         string `json:"address" validate:"notblank"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Register creates an account. The caller still has to sign in.
func (s *Store) Register(ctx context.Context, in RegisterInput) (shopapi.User, error) {
	if in.Password != in.ConfirmPassword {
		return shopapi.User{}, pkgerrors.New(pkgerrors.CodeValidation, "Passwords do not match.").
			WithDetails(map[string]string{"confirm_password": "must match password"})
	}
	if err := validation.Struct(in); err != nil {
		return shopapi.User{}, err
	}
	return s.api.Register(ctx, shopapi.RegisterRequest{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
	})
}

// Logout clears persisted and in-memory state, then notifies listeners.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasSignedIn := s.token != ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	err := s.persist.Clear(ctx, s.sid)
	if wasSignedIn {
		s.logg.Info(ctx, "auth.logout")
	}
	s.notify(ctx, false)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session")
	}
	return nil
}

// ProfileInput is the editable part of the profile. An empty password
// leaves the current one in place.
type ProfileInput struct {
	Name     string `json:"name" validate:"notblank"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// UpdateProfile saves the profile upstream and refreshes the cached user.
func (s *Store) UpdateProfile(ctx context.Context, in ProfileInput) (shopapi.User, error) {
	current, ok := s.User()
	if !ok {
		return shopapi.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to update your profile")
	}
	if err := validation.Struct(in); err != nil {
		return shopapi.User{}, err
	}
	update := shopapi.ProfileUpdate{
		Name:     strings.TrimSpace(in.Name),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Password: in.Password,
	}
	if err := s.api.UpdateProfile(ctx, update); err != nil {
		return shopapi.User{}, err
	}

	current.Name = update.Name
	current.Phone = update.Phone
	current.Address = update.Address

	s.mu.Lock()
	token := s.token
	s.user = &current
	s.mu.Unlock()

	ttl := pkgauth.SessionTTL(token, s.now(), s.maxTTL)
	if err := s.persist.Save(ctx, s.sid, session.State{Token: token, User: current}, ttl); err != nil {
		s.logg.Error(ctx, "failed to persist updated profile", err)
	}
	return current, nil
}

// Token implements shopapi.TokenSource.
func (s *Store) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

func (s *Store) User() (shopapi.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return shopapi.User{}, false
	}
	return *s.user, true
}

func (s *Store) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin()
}

func (s *Store) notify(ctx context.Context, authenticated bool) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l.OnAuthChange(ctx, authenticated)
	}
}
