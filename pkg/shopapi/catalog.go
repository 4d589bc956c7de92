package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/product", &raw); err != nil {
		return nil, err
	}
	return decodeList[Product](raw)
}

func (c *Client) ListProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, fmt.Sprintf("/product/category/%d", categoryID), &raw); err != nil {
		return nil, err
	}
	return decodeList[Product](raw)
}

func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := c.Get(ctx, fmt.Sprintf("/product/%d", id), &p)
	return p, err
}

// ProductUpload is the multipart payload for creating or editing a product.
type ProductUpload struct {
	Name        string
	Description string
	Price       string
	Stock       int
	BrandID     int64
	CategoryID  int64
	Attributes  []AttributeValuePayload
	Images      []FilePart
}

type AttributeValuePayload struct {
	AttributeID  int64   `json:"attribute_id"`
	ValueText    *string `json:"value_text"`
	ValueNumber  *string `json:"value_number"`
	ValueBoolean *bool   `json:"value_boolean"`
}

func (u ProductUpload) form() (Form, error) {
	attrs := u.Attributes
	if attrs == nil {
		attrs = []AttributeValuePayload{}
	}
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return Form{}, err
	}
	var f Form
	f.Add("name", u.Name)
	f.Add("description", u.Description)
	f.Add("price", u.Price)
	f.Add("stock", strconv.Itoa(u.Stock))
	f.Add("brand_id", strconv.FormatInt(u.BrandID, 10))
	f.Add("category_id", strconv.FormatInt(u.CategoryID, 10))
	f.Add("attributes", string(encoded))
	for _, img := range u.Images {
		img.Field = "images"
		f.Files = append(f.Files, img)
	}
	return f, nil
}

func (c *Client) CreateProduct(ctx context.Context, upload ProductUpload) error {
	form, err := upload.form()
	if err != nil {
		return err
	}
	return c.PostForm(ctx, "/product", form, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, upload ProductUpload) error {
	form, err := upload.form()
	if err != nil {
		return err
	}
	return c.PutForm(ctx, fmt.Sprintf("/product/%d", id), form, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/product/%d", id), nil)
}

func (c *Client) ListAttributesByCategory(ctx context.Context, categoryID int64) ([]ProductAttribute, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, fmt.Sprintf("/attribute/category/%d", categoryID), &raw); err != nil {
		return nil, err
	}
	return decodeList[ProductAttribute](raw)
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/category", &raw); err != nil {
		return nil, err
	}
	return decodeList[Category](raw)
}

func (c *Client) CreateCategory(ctx context.Context, name string) error {
	return c.Post(ctx, "/category", map[string]string{"name": name}, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, name string) error {
	return c.Put(ctx, fmt.Sprintf("/category/%d", id), map[string]string{"name": name}, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/category/%d", id), nil)
}

func (c *Client) ListBrands(ctx context.Context) ([]Brand, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/brand", &raw); err != nil {
		return nil, err
	}
	return decodeList[Brand](raw)
}

func (c *Client) CreateBrand(ctx context.Context, name string) error {
	return c.Post(ctx, "/brand", map[string]string{"name": name}, nil)
}

func (c *Client) UpdateBrand(ctx context.Context, id int64, name string) error {
	return c.Put(ctx, fmt.Sprintf("/brand/%d", id), map[string]string{"name": name}, nil)
}

func (c *Client) DeleteBrand(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/brand/%d", id), nil)
}
