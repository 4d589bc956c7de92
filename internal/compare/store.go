package compare

import (
	"context"
	"fmt"
	"sort"
	"sync"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
)

// MaxPerCategory caps how many products of one category can be compared.
const MaxPerCategory = 3

type API interface {
	GetCompare(ctx context.Context) (map[string][]shopapi.CompareItem, error)
	AddToCompare(ctx context.Context, productID int64) error
	RemoveFromCompare(ctx context.Context, productID int64) error
}

type StoreParams struct {
	API    API
	Logger *logger.Logger
}

// Group is one category's slice of the compare set.
type Group struct {
	Category string                `json:"category"`
	Items    []shopapi.CompareItem `json:"items"`
}

// Store mirrors the signed-in user's compare set, keeping both the flat
// list and the per-category grouping returned by the API.
type Store struct {
	api  API
	logg *logger.Logger

	mu     sync.RWMutex
	items  []shopapi.CompareItem
	groups []Group
}

func NewStore(params StoreParams) (*Store, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "compare api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Store{api: params.API, logg: params.Logger, items: []shopapi.CompareItem{}, groups: []Group{}}, nil
}

func (s *Store) OnAuthChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		s.set(nil)
		return
	}
	_ = s.Fetch(ctx)
}

// Fetch reloads the compare set. A not-found answer means an empty set.
func (s *Store) Fetch(ctx context.Context) error {
	grouped, err := s.api.GetCompare(ctx)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			s.set(nil)
			return nil
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "compare fetch failed")
		return err
	}
	s.set(grouped)
	return nil
}

// Toggle removes the product when present. Otherwise it adds it, refusing
// locally once its category already holds MaxPerCategory products.
func (s *Store) Toggle(ctx context.Context, product shopapi.Product) (bool, error) {
	if s.Contains(product.ID) {
		return false, s.Remove(ctx, product.ID)
	}
	if err := s.checkCapacity(product.CategoryID); err != nil {
		return false, err
	}
	if err := s.api.AddToCompare(ctx, product.ID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "product_id", product.ID), "compare add failed")
		return false, err
	}
	if err := s.Fetch(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (s *Store) Remove(ctx context.Context, productID int64) error {
	if err := s.api.RemoveFromCompare(ctx, productID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "product_id", productID), "compare remove failed")
		return err
	}
	return s.Fetch(ctx)
}

func (s *Store) Contains(productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == productID {
			return true
		}
	}
	return false
}

func (s *Store) Items() []shopapi.CompareItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shopapi.CompareItem(nil), s.items...)
}

// Groups returns the compare set grouped by category name, ordered by name.
func (s *Store) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = Group{Category: g.Category, Items: append([]shopapi.CompareItem(nil), g.Items...)}
	}
	return out
}

func (s *Store) checkCapacity(categoryID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var same []shopapi.CompareItem
	for _, it := range s.items {
		if it.CategoryID == categoryID {
			same = append(same, it)
		}
	}
	if len(same) < MaxPerCategory {
		return nil
	}
	msg := "You can only compare up to 3 products in the same category."
	if name := same[0].Category.Name; name != "" {
		msg = fmt.Sprintf("You can only compare up to 3 products in the %q category.", name)
	}
	return pkgerrors.New(pkgerrors.CodeRuleViolation, msg).WithDetails(map[string]any{
		"category_id": categoryID,
		"limit":       MaxPerCategory,
	})
}

func (s *Store) set(grouped map[string][]shopapi.CompareItem) {
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	items := []shopapi.CompareItem{}
	groups := make([]Group, 0, len(names))
	for _, name := range names {
		g := grouped[name]
		items = append(items, g...)
		groups = append(groups, Group{Category: name, Items: g})
	}

	s.mu.Lock()
	s.items = items
	s.groups = groups
	s.mu.Unlock()
}
