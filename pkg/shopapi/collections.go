package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
)

func (c *Client) GetCart(ctx context.Context) ([]CartItem, error) {
	var res struct {
		Message string     `json:"message"`
		Cart    []CartItem `json:"cart"`
	}
	if err := c.Get(ctx, "/cart", &res); err != nil {
		return nil, err
	}
	if res.Cart == nil {
		return []CartItem{}, nil
	}
	return res.Cart, nil
}

func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) error {
	return c.Post(ctx, "/cart", map[string]any{"productId": productID, "quantity": quantity}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, productID int64, quantity int) error {
	return c.Put(ctx, fmt.Sprintf("/cart/%d", productID), map[string]int{"quantity": quantity}, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, productID int64) error {
	return c.Delete(ctx, fmt.Sprintf("/cart/%d", productID), nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.Delete(ctx, "/cart", nil)
}

func (c *Client) GetWishlist(ctx context.Context) ([]WishlistItem, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/wishlist", &raw); err != nil {
		return nil, err
	}
	return decodeList[WishlistItem](raw)
}

func (c *Client) AddToWishlist(ctx context.Context, productID int64) error {
	return c.Post(ctx, "/wishlist", map[string]int64{"product_id": productID}, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID int64) error {
	return c.Delete(ctx, fmt.Sprintf("/wishlist/%d", productID), nil)
}

// GetCompare returns the compare set keyed by category name.
func (c *Client) GetCompare(ctx context.Context) (map[string][]CompareItem, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/compare", &raw); err != nil {
		return nil, err
	}
	return decodeGrouped[CompareItem](raw)
}

func (c *Client) AddToCompare(ctx context.Context, productID int64) error {
	return c.Post(ctx, "/compare", map[string]int64{"productId": productID}, nil)
}

func (c *Client) RemoveFromCompare(ctx context.Context, productID int64) error {
	return c.Delete(ctx, fmt.Sprintf("/compare/%d", productID), nil)
}

type buildPayload struct {
	Name       string  `json:"name"`
	ProductIDs []int64 `json:"product_ids"`
}

func (c *Client) ListBuilds(ctx context.Context) ([]PcBuild, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/pcbuild", &raw); err != nil {
		return nil, err
	}
	return decodeList[PcBuild](raw)
}

func (c *Client) GetBuild(ctx context.Context, id int64) (PcBuild, error) {
	var b PcBuild
	err := c.Get(ctx, fmt.Sprintf("/pcbuild/%d", id), &b)
	return b, err
}

func (c *Client) CreateBuild(ctx context.Context, name string, productIDs []int64) (PcBuild, error) {
	var b PcBuild
	err := c.Post(ctx, "/pcbuild", buildPayload{Name: name, ProductIDs: nonNilIDs(productIDs)}, &b)
	return b, err
}

func (c *Client) UpdateBuild(ctx context.Context, id int64, name string, productIDs []int64) (PcBuild, error) {
	var b PcBuild
	err := c.Put(ctx, fmt.Sprintf("/pcbuild/%d", id), buildPayload{Name: name, ProductIDs: nonNilIDs(productIDs)}, &b)
	return b, err
}

func (c *Client) DeleteBuild(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/pcbuild/%d", id), nil)
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
