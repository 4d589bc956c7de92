package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
)

type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
}

// CreateOrder places an order from the current cart.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var res struct {
		Order *Order `json:"order"`
	}
	if err := c.Post(ctx, "/order", req, &res); err != nil {
		return nil, err
	}
	return res.Order, nil
}

// ListOrders returns the caller's orders, or every order for an admin.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/order", &raw); err != nil {
		return nil, err
	}
	return decodeList[Order](raw)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) error {
	return c.Put(ctx, fmt.Sprintf("/order/%d", id), map[string]OrderStatus{"status": status}, nil)
}

func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	return c.Patch(ctx, fmt.Sprintf("/order/%d/cancel", id), map[string]any{}, nil)
}

// CreatePaymentURL asks the gateway integration for a redirect URL.
func (c *Client) CreatePaymentURL(ctx context.Context, orderID int64, amount int64) (string, error) {
	var res struct {
		PaymentURL string `json:"paymentUrl"`
	}
	err := c.Post(ctx, "/payment/create", map[string]int64{"orderId": orderID, "amount": amount}, &res)
	return res.PaymentURL, err
}
