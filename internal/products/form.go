package products

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/pcforge/storefront/pkg/validation"
	"github.com/shopspring/decimal"
)

// MaxImages is how many image files one save may carry. The first is the
// main image.
const MaxImages = 3

const mainImageRequired = "Main image is required"

// Form is a product as entered in the admin console.
type Form struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Price       string `json:"price" validate:"required,decimal_positive"`
	Stock       *int   `json:"stock" validate:"required,gte=0"`
	BrandID     int64  `json:"brand_id" validate:"required,gt=0"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	// Attributes maps attribute id to its entered value.
	Attributes map[int64]any `json:"attributes"`
	Images     []shopapi.FilePart `json:"-"`
}

// Validate checks the fields, then the image rule: a main image is required
// unless the product being edited already has one.
func (f Form) Validate(existing *shopapi.Product) error {
	errs := validation.FieldErrors{}
	errs.Merge(validation.Struct(f))
	if len(f.Images) > MaxImages {
		errs.Add("images", fmt.Sprintf("must contain at most %d item(s)", MaxImages))
	}
	if err := errs.Err(); err != nil {
		return err
	}
	if len(f.Images) == 0 && (existing == nil || !existing.HasMainImage()) {
		return pkgerrors.New(pkgerrors.CodeRuleViolation, mainImageRequired).
			WithDetails(map[string]string{"images": mainImageRequired})
	}
	return nil
}

// Upload converts a validated form into the multipart payload.
func (f Form) Upload(attributes []shopapi.ProductAttribute) (shopapi.ProductUpload, error) {
	payload, err := BuildAttributePayload(attributes, f.Attributes)
	if err != nil {
		return shopapi.ProductUpload{}, err
	}
	stock := 0
	if f.Stock != nil {
		stock = *f.Stock
	}
	return shopapi.ProductUpload{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Price:       strings.TrimSpace(f.Price),
		Stock:       stock,
		BrandID:     f.BrandID,
		CategoryID:  f.CategoryID,
		Attributes:  payload,
		Images:      f.Images,
	}, nil
}

// BuildAttributePayload keeps only attributes that carry a value and puts
// each value in the column its data type names. Numbers must parse.
func BuildAttributePayload(attributes []shopapi.ProductAttribute, values map[int64]any) ([]shopapi.AttributeValuePayload, error) {
	out := []shopapi.AttributeValuePayload{}
	errs := validation.FieldErrors{}
	for _, attr := range attributes {
		raw, ok := values[attr.ID]
		if !ok || raw == nil {
			continue
		}
		p := shopapi.AttributeValuePayload{AttributeID: attr.ID}
		field := fmt.Sprintf("attributes[%d]", attr.ID)
		switch attr.DataType {
		case shopapi.AttributeBoolean:
			b, ok := raw.(bool)
			if !ok {
				continue
			}
			p.ValueBoolean = &b
		case shopapi.AttributeNumber:
			text := strings.TrimSpace(fmt.Sprint(raw))
			if text == "" {
				continue
			}
			d, err := decimal.NewFromString(text)
			if err != nil {
				errs.Add(field, "must be a number")
				continue
			}
			num := d.String()
			p.ValueNumber = &num
		default:
			text := fmt.Sprint(raw)
			if strings.TrimSpace(text) == "" {
				continue
			}
			p.ValueText = &text
		}
		out = append(out, p)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AttributeValues reads a product's stored values back into form input.
func AttributeValues(p shopapi.Product) map[int64]any {
	out := map[int64]any{}
	for _, av := range p.AttributeValues {
		id := av.AttributeID
		if id == 0 {
			id = av.Attribute.ID
		}
		switch {
		case av.ValueText != nil:
			out[id] = *av.ValueText
		case av.ValueNumber.Valid:
			out[id] = av.ValueNumber.Decimal.String()
		case av.ValueBoolean != nil:
			out[id] = *av.ValueBoolean
		}
	}
	return out
}
