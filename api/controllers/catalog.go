package controllers

import (
	"net/http"

	"github.com/pcforge/storefront/api/validators"
	"github.com/pcforge/storefront/internal/catalog"
	"github.com/pcforge/storefront/internal/storefront"
	"github.com/pcforge/storefront/pkg/logger"
)

// CatalogBrowse answers the product listing: filter options plus products
// grouped by category, or one "Filtered Results" group when narrowed.
func CatalogBrowse(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		f, err := catalog.ParseFilter(r.URL.Query())
		if err != nil {
			return nil, err
		}
		return s.Catalog.Browse(r.Context(), f)
	})
}

func CatalogFeatured(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		return s.Catalog.Featured(r.Context())
	})
}

func CatalogProduct(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "productId")
		if err != nil {
			return nil, err
		}
		return s.Catalog.Product(r.Context(), id)
	})
}

func CatalogCategories(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		return s.Catalog.Categories(r.Context())
	})
}

// CatalogCategoryProducts lists the candidates of one build slot.
func CatalogCategoryProducts(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "categoryId")
		if err != nil {
			return nil, err
		}
		return s.Catalog.ProductsInCategory(r.Context(), id)
	})
}

func CatalogBrands(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		return s.Catalog.Brands(r.Context())
	})
}
