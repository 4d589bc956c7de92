package imports

import (
	"testing"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validForm() ReceiptForm {
	return ReceiptForm{
		SupplierID: 3,
		ImportDate: "2024-05-01",
		Details: []DetailForm{
			{ProductID: 1, Quantity: 3, UnitPrice: "100"},
			{ProductID: 2, Quantity: 2, UnitPrice: "50"},
		},
	}
}

func TestTotal(t *testing.T) {
	require.True(t, Total(validForm().Details).Equal(decimal.NewFromInt(400)))
	require.True(t, Total([]DetailForm{{Quantity: 2, UnitPrice: "abc"}}).IsZero())
}

func TestReceiptTotal(t *testing.T) {
	r := shopapi.ImportReceipt{Details: []shopapi.ImportReceiptDetail{
		{Quantity: 3, UnitPrice: decimal.NewFromInt(100)},
		{Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
	}}
	require.Equal(t, "400", ReceiptTotal(r).String())
}

func TestValidateAcceptsValidForm(t *testing.T) {
	require.NoError(t, validForm().Validate())
}

func TestValidateRequiresDetails(t *testing.T) {
	f := validForm()
	f.Details = nil
	err := f.Validate()
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, noDetailsMessage, pkgerrors.As(err).Message())
}

func TestValidateReportsLineFields(t *testing.T) {
	f := validForm()
	f.SupplierID = 0
	f.ImportDate = "01/05/2024"
	f.Details[1].Quantity = 0
	f.Details[1].UnitPrice = "-5"

	err := f.Validate()
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details := pkgerrors.As(err).Details().(map[string]string)
	require.Contains(t, details, "supplier_id")
	require.Contains(t, details, "import_date")
	require.Contains(t, details, "details[1].quantity")
	require.Equal(t, "must be a positive number", details["details[1].unit_price"])
}

func TestInputTrimsPrices(t *testing.T) {
	f := validForm()
	f.Details[0].UnitPrice = " 100.50 "
	in := f.Input()
	require.Equal(t, "100.50", in.Details[0].UnitPrice)
	require.EqualValues(t, 3, in.SupplierID)
}
