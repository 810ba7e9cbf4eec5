package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/minimarket/minimarket/internal/inventory"
)

// Product represents a product entity
type Product struct {
	ID           int64                 `json:"id"`
	Code         string                `json:"code"`
	Name         string                `json:"name"`
	CategoryID   int64                 `json:"category_id"`
	CategoryName string                `json:"category_name,omitempty"`
	UnitCost     decimal.Decimal       `json:"unit_cost"`
	UnitPrice    decimal.Decimal       `json:"unit_price"`
	Stock        int                   `json:"stock"`
	MinStock     *int                  `json:"min_stock"`
	ExpiryDate   *string               `json:"expiry_date"`
	Image        *string               `json:"image"`
	StockStatus  inventory.StockStatus `json:"stock_status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// withStatus fills the derived stock status.
func (p Product) withStatus() Product {
	p.StockStatus = inventory.ClassifyStock(p.Stock, p.MinStock)
	return p
}
