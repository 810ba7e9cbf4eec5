package products

import "github.com/shopspring/decimal"

type ProductForm struct {
	Code       string          `json:"code" validate:"required,max=50"`
	Name       string          `json:"name" validate:"required,max=150"`
	CategoryID int64           `json:"category_id" validate:"required,gt=0"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Stock      int             `json:"stock" validate:"gte=0"`
	MinStock   *int            `json:"min_stock" validate:"omitempty,gte=0"`
	ExpiryDate *string         `json:"expiry_date"`
	Image      *string         `json:"image" validate:"omitempty,max=255"`
}
