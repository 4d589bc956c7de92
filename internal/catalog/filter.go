package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/pcforge/storefront/pkg/validation"
	"github.com/shopspring/decimal"
)

// FilteredResultsGroup names the single group shown when filtering without a
// category.
const FilteredResultsGroup = "Filtered Results"

// Filter narrows the catalog. Zero values match everything.
type Filter struct {
	Search     string           `json:"search,omitempty"`
	BrandID    int64            `json:"brand_id,omitempty"`
	CategoryID int64            `json:"category_id,omitempty"`
	MinPrice   *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice   *decimal.Decimal `json:"max_price,omitempty"`
}

// Narrowing reports whether any filter other than category is set.
func (f Filter) Narrowing() bool {
	return f.Search != "" || f.BrandID != 0 || f.MinPrice != nil || f.MaxPrice != nil
}

// Match reports whether p passes every active predicate.
func (f Filter) Match(p shopapi.Product) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.BrandID != 0 && p.BrandID != f.BrandID {
		return false
	}
	if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// Apply keeps the products matching f, preserving order.
func Apply(products []shopapi.Product, f Filter) []shopapi.Product {
	out := make([]shopapi.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Group is a titled run of products.
type Group struct {
	Title      string            `json:"title"`
	CategoryID int64             `json:"category_id,omitempty"`
	Products   []shopapi.Product `json:"products"`
}

// GroupProducts filters products and groups them for display. With no
// category chosen but another filter active, everything lands in one
// Filtered Results group. Otherwise products are grouped per visible
// category in category order. Empty groups are omitted.
func GroupProducts(products []shopapi.Product, categories []shopapi.Category, f Filter) []Group {
	filtered := Apply(products, f)
	if f.CategoryID == 0 && f.Narrowing() {
		if len(filtered) == 0 {
			return []Group{}
		}
		return []Group{{Title: FilteredResultsGroup, Products: filtered}}
	}

	groups := []Group{}
	for _, c := range categories {
		if f.CategoryID != 0 && c.ID != f.CategoryID {
			continue
		}
		var members []shopapi.Product
		for _, p := range filtered {
			if p.CategoryID == c.ID {
				members = append(members, p)
			}
		}
		if len(members) > 0 {
			groups = append(groups, Group{Title: c.Name, CategoryID: c.ID, Products: members})
		}
	}
	return groups
}

// ParseFilter reads a filter from query parameters: search, brand_id,
// category_id, min_price and max_price.
func ParseFilter(q url.Values) (Filter, error) {
	var (
		f    Filter
		errs = validation.FieldErrors{}
	)
	f.Search = strings.TrimSpace(q.Get("search"))
	f.BrandID = parseID(q.Get("brand_id"), "brand_id", errs)
	f.CategoryID = parseID(q.Get("category_id"), "category_id", errs)
	f.MinPrice = parsePrice(q.Get("min_price"), "min_price", errs)
	f.MaxPrice = parsePrice(q.Get("max_price"), "max_price", errs)
	if err := errs.Err(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseID(raw, field string, errs validation.FieldErrors) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errs.Add(field, "must be a positive integer")
		return 0
	}
	return id
}

func parsePrice(raw, field string, errs validation.FieldErrors) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		errs.Add(field, "must be a non-negative number")
		return nil
	}
	return &d
}
