package compare

import (
	"strings"

	"github.com/pcforge/storefront/pkg/shopapi"
)

// Placeholder is shown for attributes a product does not carry.
const Placeholder = "-"

// Column is one attribute row heading of a comparison table.
type Column struct {
	AttributeID int64   `json:"attribute_id"`
	Name        string  `json:"name"`
	Unit        *string `json:"unit,omitempty"`
}

// Label is the attribute name with its unit in parentheses, when it has one.
func (c Column) Label() string {
	if c.Unit == nil || strings.TrimSpace(*c.Unit) == "" {
		return c.Name
	}
	return c.Name + " (" + *c.Unit + ")"
}

// Table pivots a product set: one row per attribute, one cell per product.
type Table struct {
	Category   string            `json:"category,omitempty"`
	Products   []shopapi.Product `json:"products"`
	Attributes []Column          `json:"attributes"`
	// Cells[i][j] is the value of Attributes[i] for Products[j].
	Cells [][]string `json:"cells"`
}

// BuildTable takes the union of attribute definitions across products in
// first-seen order and renders each product's value for each of them.
func BuildTable(products []shopapi.Product) Table {
	var columns []Column
	seen := map[int64]bool{}
	for _, p := range products {
		for _, av := range p.AttributeValues {
			id := av.Attribute.ID
			if id == 0 {
				id = av.AttributeID
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			columns = append(columns, Column{AttributeID: id, Name: av.Attribute.Name, Unit: av.Attribute.Unit})
		}
	}

	cells := make([][]string, len(columns))
	for i, col := range columns {
		row := make([]string, len(products))
		for j, p := range products {
			row[j] = CellValue(p, col.AttributeID)
		}
		cells[i] = row
	}
	return Table{
		Products:   append([]shopapi.Product{}, products...),
		Attributes: append([]Column{}, columns...),
		Cells:      cells,
	}
}

// BuildTables builds one table per compare group, in group order.
func BuildTables(groups []Group) []Table {
	tables := make([]Table, 0, len(groups))
	for _, g := range groups {
		products := make([]shopapi.Product, len(g.Items))
		for i, it := range g.Items {
			products[i] = it.Product
		}
		t := BuildTable(products)
		t.Category = g.Category
		tables = append(tables, t)
	}
	return tables
}

// CellValue renders a product's value for one attribute: text first, then
// number without trailing zeros, then Yes/No, else the placeholder.
func CellValue(p shopapi.Product, attributeID int64) string {
	for _, av := range p.AttributeValues {
		id := av.Attribute.ID
		if id == 0 {
			id = av.AttributeID
		}
		if id != attributeID {
			continue
		}
		switch {
		case av.ValueText != nil && *av.ValueText != "":
			return *av.ValueText
		case av.ValueNumber.Valid:
			return av.ValueNumber.Decimal.String()
		case av.ValueBoolean != nil:
			if *av.ValueBoolean {
				return "Yes"
			}
			return "No"
		}
		return Placeholder
	}
	return Placeholder
}
