package cart

import (
	"context"
	"strings"
	"sync"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/money"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/shopspring/decimal"
)

const emptyCartMarker = "cart is empty"

// API is the slice of the shop client the cart needs.
type API interface {
	GetCart(ctx context.Context) ([]shopapi.CartItem, error)
	AddToCart(ctx context.Context, productID int64, quantity int) error
	UpdateCartItem(ctx context.Context, productID int64, quantity int) error
	RemoveFromCart(ctx context.Context, productID int64) error
	ClearCart(ctx context.Context) error
}

// Store mirrors the signed-in user's cart. Every mutation calls the API and
// then refetches; failures are kept as an inline error string.
type Store struct {
	api  API
	logg *logger.Logger

	mu    sync.RWMutex
	items []shopapi.CartItem
	err   string
}

// StoreParams groups dependencies for the cart store.
type StoreParams struct {
	API    API
	Logger *logger.Logger
}

func NewStore(params StoreParams) (*Store, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Store{api: params.API, logg: params.Logger, items: []shopapi.CartItem{}}, nil
}

// OnAuthChange fetches on sign-in and empties the cart on sign-out.
func (s *Store) OnAuthChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		s.reset()
		return
	}
	_ = s.Fetch(ctx)
}

// Fetch replaces the local cart with the server's. An "empty cart" error
// from the API is an empty cart, not a failure.
func (s *Store) Fetch(ctx context.Context) error {
	items, err := s.api.GetCart(ctx)
	if err != nil {
		if strings.Contains(strings.ToLower(shopapi.MessageOf(err)), emptyCartMarker) {
			s.set([]shopapi.CartItem{}, "")
			return nil
		}
		s.fail(ctx, "cart.fetch", err)
		return err
	}
	s.set(items, "")
	return nil
}

// Add puts quantity units of the product in the cart.
func (s *Store) Add(ctx context.Context, productID int64, quantity int) error {
	if productID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 1 {
		quantity = 1
	}
	if err := s.api.AddToCart(ctx, productID, quantity); err != nil {
		s.fail(ctx, "cart.add", err)
		return err
	}
	return s.Fetch(ctx)
}

// UpdateQuantity sets a line's quantity, clamped to [1, stock] when the
// line is known locally.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	quantity = s.clamp(productID, quantity)
	if err := s.api.UpdateCartItem(ctx, productID, quantity); err != nil {
		s.fail(ctx, "cart.update", err)
		return err
	}
	return s.Fetch(ctx)
}

func (s *Store) Remove(ctx context.Context, productID int64) error {
	if err := s.api.RemoveFromCart(ctx, productID); err != nil {
		s.fail(ctx, "cart.remove", err)
		return err
	}
	return s.Fetch(ctx)
}

// Clear empties the cart upstream and locally.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.api.ClearCart(ctx); err != nil {
		s.fail(ctx, "cart.clear", err)
		return err
	}
	s.set([]shopapi.CartItem{}, "")
	return nil
}

func (s *Store) Items() []shopapi.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shopapi.CartItem(nil), s.items...)
}

// Err is the message of the last failed operation, cleared by the next
// successful fetch.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Count is the number of units across all lines.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Total() decimal.Decimal {
	return Total(s.Items())
}

// Total sums price times quantity over the lines.
func Total(items []shopapi.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(money.LineTotal(it.Product.Price, it.Quantity))
	}
	return total
}

func (s *Store) clamp(productID int64, quantity int) int {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ProductID == productID && it.Product.Stock > 0 && quantity > it.Product.Stock {
			return it.Product.Stock
		}
	}
	return quantity
}

func (s *Store) set(items []shopapi.CartItem, errMsg string) {
	if items == nil {
		items = []shopapi.CartItem{}
	}
	s.mu.Lock()
	s.items = items
	s.err = errMsg
	s.mu.Unlock()
}

func (s *Store) fail(ctx context.Context, op string, err error) {
	s.mu.Lock()
	s.err = shopapi.MessageOf(err)
	s.mu.Unlock()
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"op": op, "error": err.Error()}), "cart operation failed")
}

func (s *Store) reset() {
	s.set([]shopapi.CartItem{}, "")
}
