// Package lineitems holds the editable, index-addressed line items of an
// in-progress purchase or sale, along with their derived totals and the
// checks run right before submission.
package lineitems

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minimarket/minimarket/internal/money"
)

// PriceField names the per-unit money field a list edits.
type PriceField string

const (
	UnitCost  PriceField = "unit_cost"
	UnitPrice PriceField = "unit_price"
)

// Field names accepted by List.Update besides the list's PriceField.
const (
	FieldProductID = "product_id"
	FieldQty       = "qty"
)

var (
	ErrEmptyCatalog    = errors.New("lineitems: no products available")
	ErrIndexOutOfRange = errors.New("lineitems: index out of range")
	ErrUnknownField    = errors.New("lineitems: unknown field")
)

// Item is one row of the collection. Stock is nil when the product's stock is unknown.
type Item struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Stock     *int            `json:"stock,omitempty"`
}

// Subtotal is qty × price.
func (i Item) Subtotal() decimal.Decimal {
	return money.Subtotal(i.Qty, i.Price)
}

// CatalogProduct is the subset of a product needed to seed or refresh an item.
type CatalogProduct struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
}

// PriceFor returns the catalog value matching field.
func (c CatalogProduct) PriceFor(field PriceField) decimal.Decimal {
	if field == UnitCost {
		return c.UnitCost
	}
	return c.UnitPrice
}

// List is an ordered collection of items editing one PriceField.
type List struct {
	Field PriceField `json:"field"`
	Items []Item     `json:"items"`
}

// New returns an empty list for field.
func New(field PriceField) *List {
	return &List{Field: field, Items: []Item{}}
}

// Len reports the number of items.
func (l *List) Len() int {
	return len(l.Items)
}

// AddDefault appends an item seeded from catalog[0] and returns it.
func (l *List) AddDefault(catalog []CatalogProduct) (Item, error) {
	if len(catalog) == 0 {
		return Item{}, ErrEmptyCatalog
	}
	item := fromCatalog(catalog[0], l.Field)
	item.Qty = 1
	l.Items = append(l.Items, item)
	return item, nil
}

// Update sets one field of the item at index. Numeric input that does not
// parse becomes zero and prices are rounded to money.Places; range checks
// happen in Validate. A product id missing from catalog keeps the item's
// name and price but forgets its stock.
func (l *List) Update(index int, field, value string, catalog []CatalogProduct) error {
	if index < 0 || index >= len(l.Items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	item := &l.Items[index]
	switch field {
	case FieldProductID:
		id, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		item.ProductID = id
		if p, ok := lookup(catalog, id); ok {
			qty := item.Qty
			*item = fromCatalog(p, l.Field)
			item.Qty = qty
		} else {
			item.Stock = nil
		}
	case FieldQty:
		item.Qty = coerceQty(value)
	case string(l.Field):
		price, ok := money.Parse(value)
		if !ok {
			price = decimal.Zero
		}
		item.Price = money.Round(price)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Remove deletes the item at index, shifting later items down.
func (l *List) Remove(index int) error {
	if index < 0 || index >= len(l.Items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	l.Items = append(l.Items[:index], l.Items[index+1:]...)
	return nil
}

// Totals is derived from the items on every call.
type Totals struct {
	Subtotals  []decimal.Decimal `json:"subtotals"`
	GrandTotal decimal.Decimal   `json:"grand_total"`
	ItemCount  int               `json:"item_count"`
}

// Totals computes subtotals and the grand total.
func (l *List) Totals() Totals {
	subtotals := make([]decimal.Decimal, len(l.Items))
	for i, item := range l.Items {
		subtotals[i] = money.Round(item.Subtotal())
	}
	return Totals{
		Subtotals:  subtotals,
		GrandTotal: money.Round(money.Sum(subtotals...)),
		ItemCount:  len(l.Items),
	}
}

func fromCatalog(p CatalogProduct, field PriceField) Item {
	stock := p.Stock
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     money.Round(p.PriceFor(field)),
		Stock:     &stock,
	}
}

func lookup(catalog []CatalogProduct, id int64) (CatalogProduct, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return CatalogProduct{}, false
}

func coerceQty(value string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
