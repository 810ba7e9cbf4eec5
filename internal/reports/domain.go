// Package reports serves the read-only business reports behind the dashboard
// and their file exports.
package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

// ErrUnknownReport is returned for a report name that does not exist.
var ErrUnknownReport = fmt.Errorf("report %w", httpx.ErrNotFound)

// Name identifies a report in URLs and cache keys.
type Name string

const (
	CriticalStock       Name = "critical-stock"
	Expiring            Name = "expiring"
	Margin              Name = "margin"
	PurchasesBySupplier Name = "purchases-by-supplier"
	TopProducts         Name = "top-products"
)

// Names lists every report in dashboard order.
var Names = []Name{CriticalStock, Expiring, Margin, PurchasesBySupplier, TopProducts}

// ParseName validates a report name.
func ParseName(raw string) (Name, error) {
	for _, n := range Names {
		if string(n) == raw {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReport, raw)
}

// Range is an optional inclusive date range.
type Range struct {
	From *time.Time
	To   *time.Time
}

func (r Range) token() string {
	return dateToken(r.From) + "_" + dateToken(r.To)
}

// Label renders the range for document titles; empty when unbounded.
func (r Range) Label() string {
	switch {
	case r.From == nil && r.To == nil:
		return ""
	case r.From == nil:
		return "until " + r.To.Format(inventory.DateLayout)
	case r.To == nil:
		return "from " + r.From.Format(inventory.DateLayout)
	default:
		return r.From.Format(inventory.DateLayout) + " to " + r.To.Format(inventory.DateLayout)
	}
}

func dateToken(t *time.Time) string {
	if t == nil {
		return "all"
	}
	return t.Format(inventory.DateLayout)
}

// CriticalStockRow is a product at or below its minimum, or out of stock.
type CriticalStockRow struct {
	ProductID    int64                 `json:"product_id"`
	Code         string                `json:"code"`
	Name         string                `json:"name"`
	CategoryName string                `json:"category_name"`
	Stock        int                   `json:"stock"`
	MinStock     *int                  `json:"min_stock"`
	Status       inventory.StockStatus `json:"status"`
}

// ExpiringRow is a product expiring inside the report window.
type ExpiringRow struct {
	ProductID     int64                   `json:"product_id"`
	Name          string                  `json:"name"`
	ExpiryDate    string                  `json:"expiry_date"`
	Stock         int                     `json:"stock"`
	DaysRemaining *int                    `json:"days_remaining"`
	DaysLabel     string                  `json:"days_label"`
	Urgency       inventory.ReportUrgency `json:"urgency"`
}

// MarginRow is revenue against cost for one product's sales.
type MarginRow struct {
	ProductID     int64           `json:"product_id"`
	Name          string          `json:"name"`
	QtySold       int             `json:"qty_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	Margin        decimal.Decimal `json:"margin"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

// MarginTotals sums every MarginRow.
type MarginTotals struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	Margin        decimal.Decimal `json:"margin"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

// MarginReport is margin by product plus totals.
type MarginReport struct {
	Rows   []MarginRow  `json:"rows"`
	Totals MarginTotals `json:"totals"`
}

// SupplierRow aggregates purchases per supplier.
type SupplierRow struct {
	SupplierName  string          `json:"supplier_name"`
	PurchaseCount int             `json:"purchase_count"`
	TotalQty      int             `json:"total_qty"`
	Total         decimal.Decimal `json:"total"`
}

// TopProductRow ranks products by quantity sold.
type TopProductRow struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	QtySold   int             `json:"qty_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Dashboard bundles every report for one range.
type Dashboard struct {
	CriticalStock       []CriticalStockRow `json:"critical_stock"`
	Expiring            []ExpiringRow      `json:"expiring"`
	Margin              MarginReport       `json:"margin"`
	PurchasesBySupplier []SupplierRow      `json:"purchases_by_supplier"`
	TopProducts         []TopProductRow    `json:"top_products"`
	GeneratedAt         time.Time          `json:"generated_at"`
}

func titleWithRange(title string, rng Range) string {
	if label := rng.Label(); label != "" {
		return strings.TrimSpace(title + " " + label)
	}
	return title
}
