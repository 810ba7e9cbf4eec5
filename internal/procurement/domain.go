package procurement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minimarket/minimarket/internal/lineitems"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

// ErrNotFound indicates the purchase does not exist.
var ErrNotFound = fmt.Errorf("purchase %w", httpx.ErrNotFound)

// Purchase is a stock-in transaction from a supplier.
type Purchase struct {
	ID           int64           `json:"id"`
	SupplierName string          `json:"supplier_name"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Items        []PurchaseItem  `json:"items"`
	Total        decimal.Decimal `json:"total"`
	CreatedBy    int64           `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PurchaseItem is one received product line.
type PurchaseItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Qty         int             `json:"qty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PurchaseInput is the create/update payload.
type PurchaseInput struct {
	SupplierName string      `json:"supplier_name" validate:"required,max=150"`
	PurchaseDate string      `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	Items        []ItemInput `json:"items"`
}

// ItemInput is one requested line.
type ItemInput struct {
	ProductID int64           `json:"product_id"`
	Qty       int             `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// LineItems converts the payload into a line-item list for validation and totals.
func (in PurchaseInput) LineItems() *lineitems.List {
	list := lineitems.New(lineitems.UnitCost)
	for _, it := range in.Items {
		list.Items = append(list.Items, lineitems.Item{ProductID: it.ProductID, Qty: it.Qty, Price: it.UnitCost})
	}
	return list
}

// ListFilter narrows purchase listings.
type ListFilter struct {
	Search string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

func quantities(items []PurchaseItem) map[int64]int {
	out := make(map[int64]int, len(items))
	for _, it := range items {
		out[it.ProductID] += it.Qty
	}
	return out
}
