package compare

import (
	"testing"

	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func attr(id int64, name string, unit *string) shopapi.ProductAttribute {
	return shopapi.ProductAttribute{ID: id, Name: name, Unit: unit}
}

func TestBuildTableUnionsAttributesInFirstSeenOrder(t *testing.T) {
	cores := attr(1, "Cores", nil)
	clock := attr(2, "Clock", strPtr("GHz"))
	igpu := attr(3, "iGPU", nil)

	a := shopapi.Product{ID: 10, AttributeValues: []shopapi.ProductAttributeValue{
		{Attribute: cores, ValueNumber: decimal.NewNullDecimal(decimal.RequireFromString("8.00"))},
		{Attribute: clock, ValueNumber: decimal.NewNullDecimal(decimal.RequireFromString("3.50"))},
	}}
	b := shopapi.Product{ID: 11, AttributeValues: []shopapi.ProductAttributeValue{
		{Attribute: igpu, ValueBoolean: boolPtr(true)},
		{Attribute: cores, ValueText: strPtr("six")},
	}}

	table := BuildTable([]shopapi.Product{a, b})
	require.Len(t, table.Attributes, 3)
	require.Equal(t, "Cores", table.Attributes[0].Label())
	require.Equal(t, "Clock (GHz)", table.Attributes[1].Label())
	require.Equal(t, "iGPU", table.Attributes[2].Label())

	require.Equal(t, []string{"8", "six"}, table.Cells[0])
	require.Equal(t, []string{"3.5", Placeholder}, table.Cells[1])
	require.Equal(t, []string{Placeholder, "Yes"}, table.Cells[2])
}

func TestCellValuePrecedence(t *testing.T) {
	a := attr(1, "Mode", nil)
	p := shopapi.Product{AttributeValues: []shopapi.ProductAttributeValue{{
		Attribute:    a,
		ValueText:    strPtr(""),
		ValueNumber:  decimal.NewNullDecimal(decimal.NewFromInt(2)),
		ValueBoolean: boolPtr(false),
	}}}
	require.Equal(t, "2", CellValue(p, 1))

	p.AttributeValues[0].ValueNumber = decimal.NullDecimal{}
	require.Equal(t, "No", CellValue(p, 1))

	p.AttributeValues[0].ValueBoolean = nil
	require.Equal(t, Placeholder, CellValue(p, 1))
}

func TestBuildTablesPerGroup(t *testing.T) {
	groups := []Group{
		{Category: "CPU", Items: []shopapi.CompareItem{{Product: shopapi.Product{ID: 1}}}},
		{Category: "RAM", Items: nil},
	}
	tables := BuildTables(groups)
	require.Len(t, tables, 2)
	require.Equal(t, "CPU", tables[0].Category)
	require.Len(t, tables[0].Products, 1)
	require.Empty(t, tables[1].Attributes)
}
