package products

import (
	"context"
	"testing"

	"github.com/pcforge/storefront/internal/catalog"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	products   []shopapi.Product
	attributes []shopapi.ProductAttribute
	uploads    []shopapi.ProductUpload
	updatedID  int64
	categories []string
	brands     []string
}

func (f *fakeAPI) ListProducts(context.Context) ([]shopapi.Product, error) { return f.products, nil }

func (f *fakeAPI) GetProduct(_ context.Context, id int64) (shopapi.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return shopapi.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
}

func (f *fakeAPI) CreateProduct(_ context.Context, u shopapi.ProductUpload) error {
	f.uploads = append(f.uploads, u)
	return nil
}

func (f *fakeAPI) UpdateProduct(_ context.Context, id int64, u shopapi.ProductUpload) error {
	f.updatedID = id
	f.uploads = append(f.uploads, u)
	return nil
}

func (f *fakeAPI) DeleteProduct(context.Context, int64) error { return nil }

func (f *fakeAPI) ListAttributesByCategory(context.Context, int64) ([]shopapi.ProductAttribute, error) {
	return f.attributes, nil
}

func (f *fakeAPI) ListCategories(context.Context) ([]shopapi.Category, error) { return nil, nil }

func (f *fakeAPI) CreateCategory(_ context.Context, name string) error {
	f.categories = append(f.categories, "create:"+name)
	return nil
}

func (f *fakeAPI) UpdateCategory(_ context.Context, _ int64, name string) error {
	f.categories = append(f.categories, "update:"+name)
	return nil
}

func (f *fakeAPI) DeleteCategory(context.Context, int64) error { return nil }

func (f *fakeAPI) ListBrands(context.Context) ([]shopapi.Brand, error) { return nil, nil }

func (f *fakeAPI) CreateBrand(_ context.Context, name string) error {
	f.brands = append(f.brands, "create:"+name)
	return nil
}

func (f *fakeAPI) UpdateBrand(_ context.Context, _ int64, name string) error {
	f.brands = append(f.brands, "update:"+name)
	return nil
}

func (f *fakeAPI) DeleteBrand(context.Context, int64) error { return nil }

func newService(t *testing.T, api API) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{API: api, Logger: logger.Nop()})
	require.NoError(t, err)
	return svc
}

func TestCreateBuildsUploadWithAttributes(t *testing.T) {
	api := &fakeAPI{attributes: []shopapi.ProductAttribute{{ID: 9, DataType: shopapi.AttributeNumber}}}
	form := validForm()
	form.Attributes = map[int64]any{9: "8"}

	require.NoError(t, newService(t, api).Create(context.Background(), form))
	require.Len(t, api.uploads, 1)
	require.Equal(t, "449.99", api.uploads[0].Price)
	require.Len(t, api.uploads[0].Attributes, 1)
}

func TestUpdateAcceptsExistingMainImage(t *testing.T) {
	main := "/uploads/a.png"
	api := &fakeAPI{products: []shopapi.Product{{ID: 5, MainImage: &main}}}
	form := validForm()
	form.Images = nil

	require.NoError(t, newService(t, api).Update(context.Background(), 5, form))
	require.EqualValues(t, 5, api.updatedID)
}

func TestUpdateWithoutAnyMainImageIsRefused(t *testing.T) {
	api := &fakeAPI{products: []shopapi.Product{{ID: 5}}}
	form := validForm()
	form.Images = nil

	err := newService(t, api).Update(context.Background(), 5, form)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRuleViolation))
	require.Empty(t, api.uploads)
}

func TestListFilters(t *testing.T) {
	api := &fakeAPI{products: []shopapi.Product{{ID: 1, Name: "RTX 4070", CategoryID: 2}, {ID: 2, Name: "Ryzen", CategoryID: 1}}}
	got, err := newService(t, api).List(context.Background(), catalog.Filter{Search: "rtx"})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSaveCategoryAndBrand(t *testing.T) {
	api := &fakeAPI{}
	svc := newService(t, api)
	ctx := context.Background()

	require.True(t, pkgerrors.IsCode(svc.SaveCategory(ctx, 0, " "), pkgerrors.CodeValidation))
	require.NoError(t, svc.SaveCategory(ctx, 0, " GPU "))
	require.NoError(t, svc.SaveCategory(ctx, 3, "Graphics"))
	require.Equal(t, []string{"create:GPU", "update:Graphics"}, api.categories)

	require.NoError(t, svc.SaveBrand(ctx, 0, "AMD"))
	require.Equal(t, []string{"create:AMD"}, api.brands)
}
