package cart

import (
	"context"
	"net/http"
	"sync"
	"testing"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeAPI keeps a server-side cart keyed by product id.
type fakeAPI struct {
	mu       sync.Mutex
	products map[int64]shopapi.Product
	lines    map[int64]int
	order    []int64
	fetchErr error
	writeErr error
	updates  []int
	fetches  int
}

func newFakeAPI(products ...shopapi.Product) *fakeAPI {
	f := &fakeAPI{products: map[int64]shopapi.Product{}, lines: map[int64]int{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeAPI) GetCart(context.Context) ([]shopapi.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	items := []shopapi.CartItem{}
	for _, id := range f.order {
		qty, ok := f.lines[id]
		if !ok {
			continue
		}
		items = append(items, shopapi.CartItem{ID: id, ProductID: id, Quantity: qty, Product: f.products[id]})
	}
	return items, nil
}

func (f *fakeAPI) AddToCart(_ context.Context, productID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.lines[productID]; !ok {
		f.order = append(f.order, productID)
	}
	f.lines[productID] += quantity
	return nil
}

func (f *fakeAPI) UpdateCartItem(_ context.Context, productID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates = append(f.updates, quantity)
	f.lines[productID] = quantity
	return nil
}

func (f *fakeAPI) RemoveFromCart(_ context.Context, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	delete(f.lines, productID)
	return nil
}

func (f *fakeAPI) ClearCart(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.lines = map[int64]int{}
	return nil
}

func product(id int64, price int64, stock int) shopapi.Product {
	return shopapi.Product{ID: id, Name: "p", Price: decimal.NewFromInt(price), Stock: stock}
}

func newStore(t *testing.T, api API) *Store {
	t.Helper()
	s, err := NewStore(StoreParams{API: api, Logger: logger.Nop()})
	require.NoError(t, err)
	return s
}

func TestNewStoreRequiresDeps(t *testing.T) {
	_, err := NewStore(StoreParams{Logger: logger.Nop()})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = NewStore(StoreParams{API: newFakeAPI()})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestTotalFollowsMutations(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(product(1, 100, 10), product(2, 50, 10))
	s := newStore(t, api)

	require.NoError(t, s.Add(ctx, 1, 2))
	require.NoError(t, s.Add(ctx, 2, 1))
	require.True(t, s.Total().Equal(decimal.NewFromInt(250)))
	require.Equal(t, 3, s.Count())

	require.NoError(t, s.Remove(ctx, 1))
	require.True(t, s.Total().Equal(decimal.NewFromInt(50)))
	require.Len(t, s.Items(), 1)
}

func TestEmptyCartMessageIsNotAnError(t *testing.T) {
	api := newFakeAPI()
	api.fetchErr = &shopapi.Error{Status: http.StatusNotFound, Message: "Cart is empty"}
	s := newStore(t, api)

	require.NoError(t, s.Fetch(context.Background()))
	require.Empty(t, s.Items())
	require.Empty(t, s.Err())
}

func TestFailedMutationKeepsPreviousCart(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(product(1, 100, 10))
	s := newStore(t, api)
	require.NoError(t, s.Add(ctx, 1, 1))

	api.writeErr = pkgerrors.New(pkgerrors.CodeDependency, "Product is out of stock")
	err := s.Add(ctx, 1, 5)
	require.Error(t, err)
	require.Equal(t, "Product is out of stock", s.Err())
	require.Len(t, s.Items(), 1)
	require.Equal(t, 1, s.Items()[0].Quantity)
}

func TestUpdateQuantityClampsToStock(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(product(1, 10, 3))
	s := newStore(t, api)
	require.NoError(t, s.Add(ctx, 1, 1))

	require.NoError(t, s.UpdateQuantity(ctx, 1, 9))
	require.NoError(t, s.UpdateQuantity(ctx, 1, 0))
	require.Equal(t, []int{3, 1}, api.updates)
}

func TestClearEmptiesWithoutRefetch(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(product(1, 10, 3))
	s := newStore(t, api)
	require.NoError(t, s.Add(ctx, 1, 1))
	before := api.fetches

	require.NoError(t, s.Clear(ctx))
	require.Empty(t, s.Items())
	require.Equal(t, before, api.fetches)
}

func TestOnAuthChange(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(product(1, 10, 3))
	api.order = []int64{1}
	api.lines[1] = 2
	s := newStore(t, api)

	s.OnAuthChange(ctx, true)
	require.Len(t, s.Items(), 1)

	s.OnAuthChange(ctx, false)
	require.Empty(t, s.Items())
	require.True(t, s.Total().IsZero())
}

func TestItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI(product(1, 10, 3))
	s := newStore(t, api)
	require.NoError(t, s.Add(ctx, 1, 1))

	items := s.Items()
	items[0].Quantity = 99
	require.Equal(t, 1, s.Items()[0].Quantity)
}
