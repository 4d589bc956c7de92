package controllers

import (
	"net/http"

	"github.com/pcforge/storefront/api/validators"
	"github.com/pcforge/storefront/internal/compare"
	"github.com/pcforge/storefront/internal/storefront"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/money"
	"github.com/pcforge/storefront/pkg/shopapi"
)

type cartView struct {
	Items []shopapi.CartItem `json:"items"`
	Count int                `json:"count"`
	Total string             `json:"total"`
	Error string             `json:"error,omitempty"`
}

func viewCart(s *storefront.Session) cartView {
	return cartView{
		Items: s.Cart.Items(),
		Count: s.Cart.Count(),
		Total: money.Format(s.Cart.Total()),
		Error: s.Cart.Err(),
	}
}

type cartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

type productRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

func CartGet(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		if err := s.Cart.Fetch(r.Context()); err != nil {
			return nil, err
		}
		return viewCart(s), nil
	})
}

func CartAdd(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		var body cartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		if err := s.Cart.Add(r.Context(), body.ProductID, body.Quantity); err != nil {
			return nil, err
		}
		return viewCart(s), nil
	})
}

// CartUpdate sets a line's quantity, clamped to [1, stock].
func CartUpdate(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "productId")
		if err != nil {
			return nil, err
		}
		var body quantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		if err := s.Cart.UpdateQuantity(r.Context(), id, body.Quantity); err != nil {
			return nil, err
		}
		return viewCart(s), nil
	})
}

func CartRemove(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "productId")
		if err != nil {
			return nil, err
		}
		if err := s.Cart.Remove(r.Context(), id); err != nil {
			return nil, err
		}
		return viewCart(s), nil
	})
}

func CartClear(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		if err := s.Cart.Clear(r.Context()); err != nil {
			return nil, err
		}
		return viewCart(s), nil
	})
}

func WishlistGet(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		if err := s.Wishlist.Fetch(r.Context()); err != nil {
			return nil, err
		}
		return s.Wishlist.Items(), nil
	})
}

// WishlistToggle adds the product when absent and removes it otherwise.
func WishlistToggle(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		var body productRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		added, err := s.Wishlist.Toggle(r.Context(), body.ProductID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"in_wishlist": added, "items": s.Wishlist.Items()}, nil
	})
}

func WishlistRemove(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "productId")
		if err != nil {
			return nil, err
		}
		if err := s.Wishlist.Remove(r.Context(), id); err != nil {
			return nil, err
		}
		return s.Wishlist.Items(), nil
	})
}

type compareView struct {
	Groups []compare.Group `json:"groups"`
	Tables []compare.Table `json:"tables"`
}

func viewCompare(s *storefront.Session) compareView {
	groups := s.Compare.Groups()
	return compareView{Groups: groups, Tables: compare.BuildTables(groups)}
}

// CompareGet returns the compare set grouped by category with one pivot
// table per group.
func CompareGet(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		if err := s.Compare.Fetch(r.Context()); err != nil {
			return nil, err
		}
		return viewCompare(s), nil
	})
}

// CompareToggle needs the full product to enforce the per-category cap
// before calling the API.
func CompareToggle(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		var body productRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		product := shopapi.Product{ID: body.ProductID}
		if !s.Compare.Contains(body.ProductID) {
			var err error
			if product, err = s.Catalog.Product(r.Context(), body.ProductID); err != nil {
				return nil, err
			}
		}
		added, err := s.Compare.Toggle(r.Context(), product)
		if err != nil {
			return nil, err
		}
		return map[string]any{"in_compare": added, "compare": viewCompare(s)}, nil
	})
}

func CompareRemove(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "productId")
		if err != nil {
			return nil, err
		}
		if err := s.Compare.Remove(r.Context(), id); err != nil {
			return nil, err
		}
		return viewCompare(s), nil
	})
}
