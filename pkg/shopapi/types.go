package shopapi

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type AttributeType string

const (
	AttributeText    AttributeType = "text"
	AttributeNumber  AttributeType = "number"
	AttributeBoolean AttributeType = "boolean"
)

type ProductAttribute struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	CategoryID int64         `json:"category_id"`
	DataType   AttributeType `json:"data_type"`
	Unit       *string       `json:"unit"`
}

type ProductAttributeValue struct {
	ID           int64               `json:"id"`
	ProductID    int64               `json:"product_id"`
	AttributeID  int64               `json:"attribute_id"`
	ValueText    *string             `json:"value_text"`
	ValueNumber  decimal.NullDecimal `json:"value_number"`
	ValueBoolean *bool               `json:"value_boolean"`
	Attribute    ProductAttribute    `json:"ProductAttribute"`
}

type ProductImage struct {
	ID        int64  `json:"id,omitempty"`
	ImageURL  string `json:"image_url"`
	IsMain    bool   `json:"is_main"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Images accepts either a list of image objects or a bare list of URLs.
type Images []ProductImage

func (im *Images) UnmarshalJSON(data []byte) error {
	var objects []ProductImage
	if err := json.Unmarshal(data, &objects); err == nil {
		*im = objects
		return nil
	}
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return err
	}
	out := make([]ProductImage, 0, len(urls))
	for i, u := range urls {
		out = append(out, ProductImage{ImageURL: u, IsMain: i == 0})
	}
	*im = out
	return nil
}

type Product struct {
	ID              int64                   `json:"id"`
	Name            string                  `json:"name"`
	Description     string                  `json:"description"`
	Price           decimal.Decimal         `json:"price"`
	Stock           int                     `json:"stock"`
	BrandID         int64                   `json:"brand_id"`
	CategoryID      int64                   `json:"category_id"`
	CreatedAt       string                  `json:"created_at,omitempty"`
	AttributeValues []ProductAttributeValue `json:"ProductAttributeValues,omitempty"`
	MainImage       *string                 `json:"mainImage"`
	Images          Images                  `json:"images,omitempty"`
}

// HasMainImage reports whether the product already carries a main image.
func (p Product) HasMainImage() bool {
	if p.MainImage != nil && strings.TrimSpace(*p.MainImage) != "" {
		return true
	}
	for _, img := range p.Images {
		if img.IsMain {
			return true
		}
	}
	return false
}

// CompareItem is a product enriched with its category.
type CompareItem struct {
	Product
	Category Category `json:"Category"`
}

type CartItem struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"Product"`
}

type WishlistItem struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	ProductID int64   `json:"product_id"`
	Product   Product `json:"Product"`
}

type PcBuildDetail struct {
	ID        int64    `json:"id"`
	BuildID   int64    `json:"build_id"`
	ProductID int64    `json:"product_id"`
	Product   *Product `json:"Product"`
}

type PcBuild struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	CreatedAt string          `json:"created_at,omitempty"`
	Details   []PcBuildDetail `json:"PcBuildDetails"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderShipped   OrderStatus = "Shipped"
	OrderCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderCancelled}

func (s OrderStatus) IsValid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type OrderDetail struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   struct {
		ID    int64           `json:"id"`
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	} `json:"Product"`
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	OrderDate       string          `json:"order_date"`
	Status          OrderStatus     `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	Notes           string          `json:"notes"`
	Details         []OrderDetail   `json:"OrderDetails,omitempty"`
	User            User            `json:"User"`
}

type Supplier struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ImportReceiptDetail struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	ImportReceiptID int64           `json:"import_receipt_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Product         struct {
		Name string `json:"name"`
	} `json:"Product"`
}

type ImportReceipt struct {
	ID          int64                 `json:"id"`
	SupplierID  int64                 `json:"supplier_id"`
	ImportDate  string                `json:"import_date"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	Supplier    Supplier              `json:"Supplier"`
	Details     []ImportReceiptDetail `json:"ImportDetails"`
}

type RevenuePoint struct {
	Date         string          `json:"date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type TopProduct struct {
	ProductID int64 `json:"product_id"`
	TotalSold int64 `json:"total_sold"`
	Product   struct {
		Name string `json:"name"`
	} `json:"Product"`
}

type OrderStatusCount struct {
	Status OrderStatus     `json:"status"`
	Count  decimal.Decimal `json:"count"`
}

type TopCustomer struct {
	UserID     int64           `json:"user_id"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	User       struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"User"`
}

type OrderPercentage struct {
	Status     OrderStatus     `json:"status"`
	Percentage decimal.Decimal `json:"percentage"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the date formats the API emits. Zone-less values are UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
