package catalog

import (
	"net/url"
	"testing"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	cpu = shopapi.Category{ID: 1, Name: "CPU"}
	gpu = shopapi.Category{ID: 2, Name: "GPU"}
	ram = shopapi.Category{ID: 3, Name: "RAM"}
)

func catalogProducts() []shopapi.Product {
	return []shopapi.Product{
		{ID: 1, Name: "Ryzen 7", CategoryID: 1, BrandID: 10, Price: decimal.NewFromInt(300)},
		{ID: 2, Name: "Core i5", CategoryID: 1, BrandID: 20, Price: decimal.NewFromInt(200)},
		{ID: 3, Name: "Radeon RX", CategoryID: 2, BrandID: 10, Price: decimal.NewFromInt(500)},
	}
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestApplyComposesPredicates(t *testing.T) {
	got := Apply(catalogProducts(), Filter{Search: "RY", BrandID: 10})
	require.Len(t, got, 1)
	require.EqualValues(t, 1, got[0].ID)

	got = Apply(catalogProducts(), Filter{MinPrice: dec(200), MaxPrice: dec(300)})
	require.Len(t, got, 2)

	require.Len(t, Apply(catalogProducts(), Filter{}), 3)
}

func TestGroupByCategoryOmitsEmptyGroups(t *testing.T) {
	groups := GroupProducts(catalogProducts(), []shopapi.Category{cpu, gpu, ram}, Filter{})
	require.Len(t, groups, 2)
	require.Equal(t, "CPU", groups[0].Title)
	require.Len(t, groups[0].Products, 2)
	require.Equal(t, "GPU", groups[1].Title)
}

func TestGroupWithCategoryFilter(t *testing.T) {
	groups := GroupProducts(catalogProducts(), []shopapi.Category{cpu, gpu}, Filter{CategoryID: 2, BrandID: 10})
	require.Len(t, groups, 1)
	require.Equal(t, "GPU", groups[0].Title)
}

func TestGroupFilteredResults(t *testing.T) {
	groups := GroupProducts(catalogProducts(), []shopapi.Category{cpu, gpu}, Filter{BrandID: 10})
	require.Len(t, groups, 1)
	require.Equal(t, FilteredResultsGroup, groups[0].Title)
	require.Len(t, groups[0].Products, 2)

	require.Empty(t, GroupProducts(catalogProducts(), []shopapi.Category{cpu}, Filter{Search: "nothing"}))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(url.Values{
		"search":      {"  ryzen "},
		"category_id": {"1"},
		"min_price":   {"99.90"},
	})
	require.NoError(t, err)
	require.Equal(t, "ryzen", f.Search)
	require.EqualValues(t, 1, f.CategoryID)
	require.Equal(t, "99.9", f.MinPrice.String())
	require.Nil(t, f.MaxPrice)

	_, err = ParseFilter(url.Values{"brand_id": {"abc"}, "max_price": {"-1"}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details := pkgerrors.As(err).Details().(map[string]string)
	require.Contains(t, details, "brand_id")
	require.Contains(t, details, "max_price")
}
