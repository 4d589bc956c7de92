package wishlist

import (
	"context"
	"sync"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
)

type API interface {
	GetWishlist(ctx context.Context) ([]shopapi.WishlistItem, error)
	AddToWishlist(ctx context.Context, productID int64) error
	RemoveFromWishlist(ctx context.Context, productID int64) error
}

type StoreParams struct {
	API    API
	Logger *logger.Logger
}

// Store mirrors the signed-in user's wishlist.
type Store struct {
	api  API
	logg *logger.Logger

	mu    sync.RWMutex
	items []shopapi.WishlistItem
}

func NewStore(params StoreParams) (*Store, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Store{api: params.API, logg: params.Logger, items: []shopapi.WishlistItem{}}, nil
}

func (s *Store) OnAuthChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		s.set([]shopapi.WishlistItem{})
		return
	}
	_ = s.Fetch(ctx)
}

func (s *Store) Fetch(ctx context.Context) error {
	items, err := s.api.GetWishlist(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "wishlist fetch failed")
		return err
	}
	s.set(items)
	return nil
}

// Toggle removes the product when wishlisted, adds it otherwise. It reports
// whether the product is wishlisted afterwards.
func (s *Store) Toggle(ctx context.Context, productID int64) (bool, error) {
	if s.Contains(productID) {
		return false, s.Remove(ctx, productID)
	}
	if err := s.api.AddToWishlist(ctx, productID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "product_id", productID), "wishlist add failed")
		return false, err
	}
	if err := s.Fetch(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (s *Store) Remove(ctx context.Context, productID int64) error {
	if err := s.api.RemoveFromWishlist(ctx, productID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "product_id", productID), "wishlist remove failed")
		return err
	}
	return s.Fetch(ctx)
}

func (s *Store) Contains(productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *Store) Items() []shopapi.WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shopapi.WishlistItem(nil), s.items...)
}

func (s *Store) set(items []shopapi.WishlistItem) {
	if items == nil {
		items = []shopapi.WishlistItem{}
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}
