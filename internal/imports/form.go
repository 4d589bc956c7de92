package imports

import (
	"strings"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/money"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/pcforge/storefront/pkg/validation"
	"github.com/shopspring/decimal"
)

const noDetailsMessage = "At least one product must be added to the import."

// DetailForm is one line of a stock receipt as entered.
type DetailForm struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	UnitPrice string `json:"unit_price" validate:"required,decimal_positive"`
}

// ReceiptForm is a stock receipt as entered in the admin console.
type ReceiptForm struct {
	SupplierID int64        `json:"supplier_id" validate:"required,gt=0"`
	ImportDate string       `json:"import_date" validate:"required,datetime=2006-01-02"`
	Details    []DetailForm `json:"details" validate:"dive"`
}

// Validate checks the form; details errors are keyed like
// "details[1].quantity".
func (f ReceiptForm) Validate() error {
	errs := validation.FieldErrors{}
	if len(f.Details) == 0 {
		errs.Add("details", noDetailsMessage)
	}
	errs.Merge(validation.Struct(f))
	if err := errs.Err(); err != nil {
		if len(f.Details) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, noDetailsMessage).WithDetails(map[string]string(errs))
		}
		return err
	}
	return nil
}

// Input converts a validated form to the API payload.
func (f ReceiptForm) Input() shopapi.ImportReceiptInput {
	details := make([]shopapi.ImportDetailInput, len(f.Details))
	for i, d := range f.Details {
		details[i] = shopapi.ImportDetailInput{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: strings.TrimSpace(d.UnitPrice),
		}
	}
	return shopapi.ImportReceiptInput{
		SupplierID: f.SupplierID,
		ImportDate: f.ImportDate,
		Details:    details,
	}
}

// Total sums quantity times unit price over the lines. Unparseable prices
// count as zero.
func Total(details []DetailForm) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		price, ok, err := money.Parse(d.UnitPrice)
		if err != nil || !ok {
			continue
		}
		total = total.Add(money.LineTotal(price, d.Quantity))
	}
	return total
}

// ReceiptTotal sums a stored receipt's lines.
func ReceiptTotal(r shopapi.ImportReceipt) decimal.Decimal {
	total := decimal.Zero
	for _, d := range r.Details {
		total = total.Add(money.LineTotal(d.UnitPrice, d.Quantity))
	}
	return total
}
