package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/pcforge/storefront/internal/auth"
	"github.com/pcforge/storefront/internal/cart"
	"github.com/pcforge/storefront/internal/catalog"
	"github.com/pcforge/storefront/internal/chatbot"
	"github.com/pcforge/storefront/internal/compare"
	"github.com/pcforge/storefront/internal/customers"
	"github.com/pcforge/storefront/internal/dashboard"
	"github.com/pcforge/storefront/internal/imports"
	"github.com/pcforge/storefront/internal/orders"
	"github.com/pcforge/storefront/internal/pcbuild"
	"github.com/pcforge/storefront/internal/products"
	"github.com/pcforge/storefront/internal/suppliers"
	"github.com/pcforge/storefront/internal/wishlist"
	"github.com/pcforge/storefront/pkg/auth/session"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
)

// SessionParams groups what one storefront session is built from.
type SessionParams struct {
	ID          string
	Client      *shopapi.Client
	Persistence session.Store
	AssetHost   string
	Logger      *logger.Logger
	MaxTTL      time.Duration
}

// Session bundles the containers and services of one signed-in (or
// anonymous) visitor. Every piece shares a client that carries the
// session's token.
type Session struct {
	ID     string
	Client *shopapi.Client

	Auth     *auth.Store
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Compare  *compare.Store
	Builds   *pcbuild.Store
	Chat     *chatbot.Conversation

	Catalog   *catalog.Service
	Orders    *orders.Service
	Products  *products.Service
	Suppliers *suppliers.Service
	Customers *customers.Service
	Imports   *imports.Service
	Dashboard *dashboard.Service

	logg *logger.Logger

	draftMu sync.Mutex
	draft   *pcbuild.Assembler
}

// NewSession wires the containers together and subscribes them to auth
// changes. It does not restore persisted auth.
func NewSession(params SessionParams) (*Session, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}

	s := &Session{ID: params.ID, logg: params.Logger, draft: pcbuild.NewAssembler()}
	s.Client = params.Client.WithTokenSource(shopapi.TokenFunc(func(ctx context.Context) (string, error) {
		if s.Auth == nil {
			return "", nil
		}
		return s.Auth.Token(ctx)
	}))

	var err error
	if s.Auth, err = auth.NewStore(auth.StoreParams{
		API:         s.Client,
		Persistence: params.Persistence,
		SessionID:   params.ID,
		Logger:      params.Logger,
		MaxTTL:      params.MaxTTL,
	}); err != nil {
		return nil, err
	}
	if s.Cart, err = cart.NewStore(cart.StoreParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Wishlist, err = wishlist.NewStore(wishlist.StoreParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Compare, err = compare.NewStore(compare.StoreParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Builds, err = pcbuild.NewStore(pcbuild.StoreParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Chat, err = chatbot.NewConversation(chatbot.ConversationParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Catalog, err = catalog.NewService(catalog.ServiceParams{API: s.Client, AssetHost: params.AssetHost, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Orders, err = orders.NewService(orders.ServiceParams{API: s.Client, Cart: s.Cart, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Products, err = products.NewService(products.ServiceParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Suppliers, err = suppliers.NewService(suppliers.ServiceParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Customers, err = customers.NewService(customers.ServiceParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Imports, err = imports.NewService(imports.ServiceParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}
	if s.Dashboard, err = dashboard.NewService(dashboard.ServiceParams{API: s.Client, Logger: params.Logger}); err != nil {
		return nil, err
	}

	s.Auth.Subscribe(s.Cart)
	s.Auth.Subscribe(s.Wishlist)
	s.Auth.Subscribe(s.Compare)
	s.Auth.Subscribe(s.Builds)
	s.Auth.Subscribe(s.Chat)
	s.Auth.Subscribe(listenerFunc(func(_ context.Context, authenticated bool) {
		if !authenticated {
			s.ResetDraft()
		}
	}))
	return s, nil
}

// Restore loads persisted auth and, when signed in, fills every container.
func (s *Session) Restore(ctx context.Context) error {
	_, err := s.Auth.Restore(ctx)
	return err
}

// Draft runs fn with exclusive access to the build being assembled.
func (s *Session) Draft(fn func(a *pcbuild.Assembler) error) error {
	s.draftMu.Lock()
	defer s.draftMu.Unlock()
	return fn(s.draft)
}

// LoadDraft replaces the draft with a saved build and returns any products
// that collided on a category while loading.
func (s *Session) LoadDraft(ctx context.Context, buildID int64) ([]pcbuild.Collision, error) {
	if buildID == 0 {
		s.ResetDraft()
		return nil, nil
	}
	build, err := s.Builds.Get(ctx, buildID)
	if err != nil {
		return nil, err
	}
	a := pcbuild.FromBuild(build)
	if collisions := a.Collisions(); len(collisions) > 0 {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"build_id":   buildID,
			"collisions": len(collisions),
		}), "saved build holds several products for one category")
	}
	s.draftMu.Lock()
	s.draft = a
	s.draftMu.Unlock()
	return a.Collisions(), nil
}

func (s *Session) ResetDraft() {
	s.draftMu.Lock()
	s.draft = pcbuild.NewAssembler()
	s.draftMu.Unlock()
}

type listenerFunc func(ctx context.Context, authenticated bool)

func (f listenerFunc) OnAuthChange(ctx context.Context, authenticated bool) { f(ctx, authenticated) }
