package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	products   []shopapi.Product
	categories []shopapi.Category
	brandsErr  error
	calls      atomic.Int32
}

func (f *fakeAPI) ListProducts(context.Context) ([]shopapi.Product, error) {
	f.calls.Add(1)
	out := make([]shopapi.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeAPI) ListProductsByCategory(_ context.Context, categoryID int64) ([]shopapi.Product, error) {
	f.calls.Add(1)
	var out []shopapi.Product
	for _, p := range f.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetProduct(_ context.Context, id int64) (shopapi.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return shopapi.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
}

func (f *fakeAPI) ListCategories(context.Context) ([]shopapi.Category, error) {
	f.calls.Add(1)
	return f.categories, nil
}

func (f *fakeAPI) ListBrands(context.Context) ([]shopapi.Brand, error) {
	f.calls.Add(1)
	if f.brandsErr != nil {
		return nil, f.brandsErr
	}
	return []shopapi.Brand{{ID: 10, Name: "AMD"}}, nil
}

func newService(t *testing.T, api API) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{API: api, AssetHost: "https://shop.test/", Logger: logger.Nop()})
	require.NoError(t, err)
	return svc
}

func TestBrowseLoadsEverythingAndGroups(t *testing.T) {
	api := &fakeAPI{products: catalogProducts(), categories: []shopapi.Category{cpu, gpu}}
	view, err := newService(t, api).Browse(context.Background(), Filter{})
	require.NoError(t, err)
	require.EqualValues(t, 3, api.calls.Load())
	require.Len(t, view.Groups, 2)
	require.Equal(t, 3, view.Total)
	require.Len(t, view.Brands, 1)
}

func TestBrowseFailsWhenAnyLoadFails(t *testing.T) {
	api := &fakeAPI{products: catalogProducts(), brandsErr: errors.New("boom")}
	_, err := newService(t, api).Browse(context.Background(), Filter{})
	require.EqualError(t, err, "boom")
}

func TestFeaturedTakesFirstEight(t *testing.T) {
	var products []shopapi.Product
	for i := int64(1); i <= 12; i++ {
		products = append(products, shopapi.Product{ID: i})
	}
	got, err := newService(t, &fakeAPI{products: products}).Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, got, FeaturedCount)
	require.EqualValues(t, 8, got[7].ID)
}

func TestProductResolvesImages(t *testing.T) {
	main := "/uploads/a.png"
	api := &fakeAPI{products: []shopapi.Product{{
		ID:        1,
		MainImage: &main,
		Images:    shopapi.Images{{ImageURL: "uploads/b.png"}, {ImageURL: "https://cdn.test/c.png"}},
	}}}
	p, err := newService(t, api).Product(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "https://shop.test/uploads/a.png", *p.MainImage)
	require.Equal(t, "https://shop.test/uploads/b.png", p.Images[0].ImageURL)
	require.Equal(t, "https://cdn.test/c.png", p.Images[1].ImageURL)
	// The fake's copy is untouched.
	require.Equal(t, "/uploads/a.png", main)
}

func TestProductRequiresID(t *testing.T) {
	_, err := newService(t, &fakeAPI{}).Product(context.Background(), 0)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestImageURLPlaceholder(t *testing.T) {
	require.Equal(t, placeholderImage, ImageURL("https://shop.test", " "))
}

func TestProductsInCategoryNeverReturnsNil(t *testing.T) {
	api := &fakeAPI{products: catalogProducts(), categories: []shopapi.Category{cpu, gpu}}
	out, err := newService(t, api).ProductsInCategory(context.Background(), gpu.ID)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	for _, p := range out {
		require.Equal(t, gpu.ID, p.CategoryID)
	}

	none, err := newService(t, api).ProductsInCategory(context.Background(), 999)
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}
