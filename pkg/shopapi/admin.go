package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
)

type SupplierInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/supplier", &raw); err != nil {
		return nil, err
	}
	return decodeList[Supplier](raw)
}

func (c *Client) CreateSupplier(ctx context.Context, in SupplierInput) error {
	return c.Post(ctx, "/supplier", in, nil)
}

func (c *Client) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) error {
	return c.Put(ctx, fmt.Sprintf("/supplier/%d", id), in, nil)
}

func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/supplier/%d", id), nil)
}

type ImportDetailInput struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type ImportReceiptInput struct {
	SupplierID int64               `json:"supplier_id"`
	ImportDate string              `json:"import_date"`
	Details    []ImportDetailInput `json:"details"`
}

func (c *Client) ListImports(ctx context.Context) ([]ImportReceipt, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/import", &raw); err != nil {
		return nil, err
	}
	return decodeList[ImportReceipt](raw)
}

func (c *Client) CreateImport(ctx context.Context, in ImportReceiptInput) error {
	return c.Post(ctx, "/import", in, nil)
}

func (c *Client) DeleteImport(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/import/%d", id), nil)
}

func (c *Client) ListCustomers(ctx context.Context) ([]User, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/customer", &raw); err != nil {
		return nil, err
	}
	return decodeList[User](raw)
}

func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/customer/%d", id), nil)
}

func (c *Client) RevenueStats(ctx context.Context) ([]RevenuePoint, error) {
	return getStats[RevenuePoint](ctx, c, "revenue")
}

func (c *Client) TopProductStats(ctx context.Context) ([]TopProduct, error) {
	return getStats[TopProduct](ctx, c, "top-products")
}

func (c *Client) OrderStatusStats(ctx context.Context) ([]OrderStatusCount, error) {
	return getStats[OrderStatusCount](ctx, c, "orders-status")
}

func (c *Client) TopCustomerStats(ctx context.Context) ([]TopCustomer, error) {
	return getStats[TopCustomer](ctx, c, "top-customers")
}

func (c *Client) OrderPercentageStats(ctx context.Context) ([]OrderPercentage, error) {
	return getStats[OrderPercentage](ctx, c, "order-percentage")
}

func getStats[T any](ctx context.Context, c *Client, name string) ([]T, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/statistics/"+name, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}
