package pcbuild

import (
	"context"
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/shopapi"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Saver persists a build. *Store satisfies it.
type Saver interface {
	Create(ctx context.Context, name string, productIDs []int64) (shopapi.PcBuild, error)
	Update(ctx context.Context, id int64, name string, productIDs []int64) (shopapi.PcBuild, error)
}

// CartAdder adds products to the cart. *cart.Store satisfies it.
type CartAdder interface {
	Add(ctx context.Context, productID int64, quantity int) error
}

// Collision records a product displaced while loading a saved build because
// another product of the same category was loaded after it.
type Collision struct {
	CategoryID int64           `json:"category_id"`
	Dropped    shopapi.Product `json:"dropped"`
	Kept       shopapi.Product `json:"kept"`
}

// Slot is one row of the build sheet: a category and its selected product.
type Slot struct {
	Category shopapi.Category `json:"category"`
	Product  *shopapi.Product `json:"product,omitempty"`
}

// Assembler holds at most one selected product per category.
type Assembler struct {
	buildID    int64
	name       string
	selected   map[int64]shopapi.Product
	collisions []Collision
}

func NewAssembler() *Assembler {
	return &Assembler{selected: map[int64]shopapi.Product{}}
}

// FromBuild rebuilds the selection from a saved build, keying each detail by
// its product's category. Details without a product or category are skipped.
// When two products share a category the later one wins and the earlier one
// is reported in Collisions.
func FromBuild(build shopapi.PcBuild) *Assembler {
	a := NewAssembler()
	a.buildID = build.ID
	a.name = build.Name
	for _, d := range build.Details {
		if d.Product == nil || d.Product.CategoryID == 0 {
			continue
		}
		p := *d.Product
		if prev, ok := a.selected[p.CategoryID]; ok && prev.ID != p.ID {
			a.collisions = append(a.collisions, Collision{CategoryID: p.CategoryID, Dropped: prev, Kept: p})
		}
		a.selected[p.CategoryID] = p
	}
	return a
}

func (a *Assembler) BuildID() int64 { return a.buildID }

func (a *Assembler) IsNew() bool { return a.buildID == 0 }

func (a *Assembler) Name() string { return a.name }

func (a *Assembler) SetName(name string) { a.name = name }

// Select puts p in its category's slot, replacing any previous choice.
func (a *Assembler) Select(p shopapi.Product) error {
	if p.ID <= 0 || p.CategoryID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product with a category is required")
	}
	a.selected[p.CategoryID] = p
	return nil
}

func (a *Assembler) Remove(categoryID int64) {
	delete(a.selected, categoryID)
}

// Selected returns the chosen product for a category.
func (a *Assembler) Selected(categoryID int64) (shopapi.Product, bool) {
	p, ok := a.selected[categoryID]
	return p, ok
}

// Products returns the selection ordered by category id.
func (a *Assembler) Products() []shopapi.Product {
	ids := make([]int64, 0, len(a.selected))
	for id := range a.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]shopapi.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, a.selected[id])
	}
	return out
}

// ProductIDs is the flat list persisted for the build.
func (a *Assembler) ProductIDs() []int64 {
	products := a.Products()
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func (a *Assembler) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.selected {
		total = total.Add(p.Price)
	}
	return total
}

func (a *Assembler) Len() int { return len(a.selected) }

func (a *Assembler) Collisions() []Collision {
	return append([]Collision(nil), a.collisions...)
}

// Slots lists every category in the given order with its selection, if any.
func (a *Assembler) Slots(categories []shopapi.Category) []Slot {
	slots := make([]Slot, 0, len(categories))
	for _, c := range categories {
		slot := Slot{Category: c}
		if p, ok := a.selected[c.ID]; ok {
			p := p
			slot.Product = &p
		}
		slots = append(slots, slot)
	}
	return slots
}

// Save creates the build when new, otherwise updates it.
func (a *Assembler) Save(ctx context.Context, saver Saver) (shopapi.PcBuild, error) {
	name := strings.TrimSpace(a.name)
	if name == "" {
		return shopapi.PcBuild{}, pkgerrors.New(pkgerrors.CodeValidation, "Please enter a name for your build.").
			WithDetails(map[string]string{"name": "Please enter a name for your build."})
	}
	var (
		build shopapi.PcBuild
		err   error
	)
	if a.IsNew() {
		build, err = saver.Create(ctx, name, a.ProductIDs())
	} else {
		build, err = saver.Update(ctx, a.buildID, name, a.ProductIDs())
	}
	// A refetch can fail after the upstream write landed; keep the id so a
	// retry updates instead of creating a second build.
	if build.ID != 0 {
		a.buildID = build.ID
	}
	if err != nil {
		return build, err
	}
	return build, nil
}

// AddAllToCart adds one of each selected product to the cart in category
// order. Every product is attempted; failures are combined.
func (a *Assembler) AddAllToCart(ctx context.Context, cart CartAdder) error {
	products := a.Products()
	if len(products) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Please select at least one component to add to cart.")
	}
	var errs error
	for _, p := range products {
		if err := cart.Add(ctx, p.ID, 1); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("product %d: %w", p.ID, err))
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "Failed to add some components to the cart. Please check your cart.").
			WithDetails(map[string]any{"failed": len(multierr.Errors(errs)), "total": len(products)})
	}
	return nil
}
