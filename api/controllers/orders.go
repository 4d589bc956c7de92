package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pcforge/storefront/api/responses"
	"github.com/pcforge/storefront/api/validators"
	"github.com/pcforge/storefront/internal/orders"
	"github.com/pcforge/storefront/internal/storefront"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/shopapi"
)

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

// Checkout places an order from the cart and returns the gateway URL the
// client should be redirected to.
func Checkout(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusCreated, func(r *http.Request, s *storefront.Session) (any, error) {
		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return s.Orders.Checkout(r.Context(), orders.CheckoutInput{
			ShippingAddress: validators.SanitizeString(body.ShippingAddress, 500),
			Notes:           validators.SanitizeString(body.Notes, 1000),
		})
	})
}

// PaymentReturn resolves the gateway redirect. It accepts the gateway's own
// query names alongside the short ones.
func PaymentReturn(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		q := r.URL.Query()
		rawID := firstNonEmpty(q.Get("order_id"), q.Get("orderId"), q.Get("vnp_TxnRef"))
		code := firstNonEmpty(q.Get("response_code"), q.Get("vnp_ResponseCode"))

		var orderID int64
		if rawID != "" {
			id, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil || id <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id").
					WithDetails(map[string]string{"order_id": "must be a positive integer"}))
				return
			}
			orderID = id
		}

		outcome, err := s.Orders.ResolvePaymentReturn(r.Context(), orderID, code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

func OrdersMine(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		return s.Orders.ListMine(r.Context())
	})
}

func OrderCancel(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "orderId")
		if err != nil {
			return nil, err
		}
		return nil, s.Orders.Cancel(r.Context(), id)
	})
}

// AdminOrdersList filters every order and returns one page of the result.
func AdminOrdersList(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		f, err := orders.ParseFilter(r.URL.Query())
		if err != nil {
			return nil, err
		}
		list, err := s.Orders.ListAll(r.Context(), f)
		if err != nil {
			return nil, err
		}
		return page(r, list)
	})
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminOrderStatus(logg *logger.Logger) http.HandlerFunc {
	return handle(logg, http.StatusOK, func(r *http.Request, s *storefront.Session) (any, error) {
		id, err := validators.PathID(r, "orderId")
		if err != nil {
			return nil, err
		}
		var body orderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return nil, s.Orders.UpdateStatus(r.Context(), id, shopapi.OrderStatus(strings.TrimSpace(body.Status)))
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
