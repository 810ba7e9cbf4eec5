package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minimarket/minimarket/internal/lineitems"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

// ErrNotFound indicates the sale does not exist.
var ErrNotFound = fmt.Errorf("sale %w", httpx.ErrNotFound)

// Sale is a stock-out transaction, optionally attributed to a customer.
type Sale struct {
	ID           int64           `json:"id"`
	CustomerID   *int64          `json:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty"`
	SaleDate     time.Time       `json:"sale_date"`
	Items        []SaleItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	CreatedBy    int64           `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SaleItem is one sold product line.
type SaleItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleInput is the create/update payload.
type SaleInput struct {
	CustomerID *int64      `json:"customer_id" validate:"omitempty,gt=0"`
	SaleDate   string      `json:"sale_date" validate:"required,datetime=2006-01-02"`
	Items      []ItemInput `json:"items"`
}

// ItemInput is one requested line. Stock, when set, is the level the client
// last saw and only feeds the advisory pre-check.
type ItemInput struct {
	ProductID int64           `json:"product_id"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     *int            `json:"stock,omitempty"`
}

// LineItems converts the payload into a line-item list for validation and totals.
func (in SaleInput) LineItems() *lineitems.List {
	list := lineitems.New(lineitems.UnitPrice)
	for _, it := range in.Items {
		list.Items = append(list.Items, lineitems.Item{ProductID: it.ProductID, Qty: it.Qty, Price: it.UnitPrice, Stock: it.Stock})
	}
	return list
}

// ListFilter narrows sale listings.
type ListFilter struct {
	CustomerID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

func quantities(items []SaleItem) map[int64]int {
	out := make(map[int64]int, len(items))
	for _, it := range items {
		out[it.ProductID] += it.Qty
	}
	return out
}
