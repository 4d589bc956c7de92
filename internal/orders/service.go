package orders

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/logger"
	"github.com/pcforge/storefront/pkg/money"
	"github.com/pcforge/storefront/pkg/shopapi"
)

// SuccessResponseCode is the gateway's approval code.
const SuccessResponseCode = "00"

type API interface {
	CreateOrder(ctx context.Context, req shopapi.CreateOrderRequest) (*shopapi.Order, error)
	CreatePaymentURL(ctx context.Context, orderID int64, amount int64) (string, error)
	ListOrders(ctx context.Context) ([]shopapi.Order, error)
	CancelOrder(ctx context.Context, id int64) error
	UpdateOrderStatus(ctx context.Context, id int64, status shopapi.OrderStatus) error
}

// CartRefresher reloads the cart once an order has consumed it.
type CartRefresher interface {
	Fetch(ctx context.Context) error
}

type ServiceParams struct {
	API    API
	Cart   CartRefresher
	Logger *logger.Logger
}

type Service struct {
	api  API
	cart CartRefresher
	logg *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders api is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Service{api: params.API, cart: params.Cart, logg: params.Logger}, nil
}

type CheckoutInput struct {
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

type CheckoutResult struct {
	Order      shopapi.Order `json:"order"`
	Amount     int64         `json:"amount"`
	PaymentURL string        `json:"payment_url"`
}

// Checkout places an order from the current cart and asks the gateway for a
// payment URL for its total rounded to a whole currency unit.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	address := strings.TrimSpace(in.ShippingAddress)
	if address == "" {
		return CheckoutResult{}, pkgerrors.New(pkgerrors.CodeValidation, "Shipping address is required.").
			WithDetails(map[string]string{"shipping_address": "Shipping address is required."})
	}

	order, err := s.api.CreateOrder(ctx, shopapi.CreateOrderRequest{ShippingAddress: address, Notes: in.Notes})
	if err != nil {
		s.logg.Error(ctx, "order creation failed", err)
		return CheckoutResult{}, err
	}
	if order == nil || order.ID == 0 {
		return CheckoutResult{}, pkgerrors.New(pkgerrors.CodeDependency, "Failed to create order. No ID returned.")
	}
	ctx = s.logg.WithField(ctx, "order_id", order.ID)

	amount := money.RoundToUnit(order.TotalAmount)
	url, err := s.api.CreatePaymentURL(ctx, order.ID, amount)
	if err != nil {
		s.logg.Error(ctx, "payment url request failed", err)
		return CheckoutResult{}, err
	}
	if strings.TrimSpace(url) == "" {
		return CheckoutResult{}, pkgerrors.New(pkgerrors.CodeDependency, "Could not retrieve payment URL.")
	}
	s.logg.Info(ctx, "checkout handed off to payment gateway")
	return CheckoutResult{Order: *order, Amount: amount, PaymentURL: url}, nil
}

// PaymentStatus is the outcome shown after the gateway redirects back.
type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
	PaymentPending PaymentStatus = "pending"
	PaymentError   PaymentStatus = "error"
)

type PaymentOutcome struct {
	Status PaymentStatus  `json:"status"`
	Order  *shopapi.Order `json:"order,omitempty"`
}

// ResolvePaymentReturn decides the payment outcome from the gateway's
// response code and the order's stored status. Successful outcomes refresh
// the cart.
func (s *Service) ResolvePaymentReturn(ctx context.Context, orderID int64, responseCode string) (PaymentOutcome, error) {
	responseCode = strings.TrimSpace(responseCode)
	if responseCode != "" && responseCode != SuccessResponseCode {
		return PaymentOutcome{Status: PaymentFailed}, nil
	}
	if orderID <= 0 {
		return PaymentOutcome{Status: PaymentError}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	list, err := s.api.ListOrders(ctx)
	if err != nil {
		return PaymentOutcome{Status: PaymentError}, err
	}
	order, ok := find(list, orderID)
	if !ok {
		return PaymentOutcome{Status: PaymentError}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	out := PaymentOutcome{Order: &order}
	switch order.Status {
	case shopapi.OrderConfirmed, shopapi.OrderShipped:
		out.Status = PaymentSuccess
	case shopapi.OrderCancelled:
		out.Status = PaymentFailed
	default:
		out.Status = PaymentPending
		if responseCode == SuccessResponseCode {
			out.Status = PaymentSuccess
		}
	}
	if out.Status == PaymentSuccess {
		s.refreshCart(ctx)
	}
	return out, nil
}

// ListMine returns the caller's orders.
func (s *Service) ListMine(ctx context.Context) ([]shopapi.Order, error) {
	list, err := s.api.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []shopapi.Order{}
	}
	return list, nil
}

// Cancel cancels one of the caller's orders. Only pending orders can be
// cancelled.
func (s *Service) Cancel(ctx context.Context, orderID int64) error {
	list, err := s.api.ListOrders(ctx)
	if err != nil {
		return err
	}
	order, ok := find(list, orderID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status != shopapi.OrderPending {
		return pkgerrors.New(pkgerrors.CodeRuleViolation, fmt.Sprintf("Only pending orders can be cancelled; this order is %s.", order.Status))
	}
	if err := s.api.CancelOrder(ctx, orderID); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", orderID), "order cancel failed", err)
		return err
	}
	return nil
}

// ListAll returns every order filtered for the admin console.
func (s *Service) ListAll(ctx context.Context, f Filter) ([]shopapi.Order, error) {
	list, err := s.api.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(list, f), nil
}

// UpdateStatus moves an order to next. Shipped and cancelled orders are
// final.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, next shopapi.OrderStatus) error {
	if !next.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", next)).
			WithDetails(map[string]string{"status": "must be one of: Pending Confirmed Shipped Cancelled"})
	}
	list, err := s.api.ListOrders(ctx)
	if err != nil {
		return err
	}
	order, ok := find(list, orderID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status == next {
		return nil
	}
	if err := CheckTransition(order.Status, next); err != nil {
		return err
	}
	if err := s.api.UpdateOrderStatus(ctx, orderID, next); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", orderID), "order status update failed", err)
		return err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"order_id": orderID, "status": string(next)}), "order status updated")
	return nil
}

// CheckTransition refuses any change to a shipped or cancelled order.
func CheckTransition(current, next shopapi.OrderStatus) error {
	if current == next {
		return nil
	}
	if current == shopapi.OrderShipped || current == shopapi.OrderCancelled {
		return pkgerrors.New(pkgerrors.CodeRuleViolation, fmt.Sprintf("A %s order can no longer change status.", strings.ToLower(string(current))))
	}
	return nil
}

func (s *Service) refreshCart(ctx context.Context) {
	if s.cart == nil {
		return
	}
	if err := s.cart.Fetch(ctx); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart refresh after payment failed")
	}
}

func find(list []shopapi.Order, id int64) (shopapi.Order, bool) {
	for _, o := range list {
		if o.ID == id {
			return o, true
		}
	}
	return shopapi.Order{}, false
}
