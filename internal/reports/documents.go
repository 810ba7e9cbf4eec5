package reports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/money"
	"github.com/minimarket/minimarket/internal/reports/export"
)

// Document loads a report and lays it out for export.
func (s *Service) Document(ctx context.Context, name Name, rng Range) (export.Document, error) {
	switch name {
	case CriticalStock:
		rows, err := s.CriticalStock(ctx)
		if err != nil {
			return export.Document{}, err
		}
		return CriticalStockDocument(rows), nil
	case Expiring:
		rows, err := s.Expiring(ctx, rng)
		if err != nil {
			return export.Document{}, err
		}
		return ExpiringDocument(rows), nil
	case Margin:
		report, err := s.Margin(ctx, rng)
		if err != nil {
			return export.Document{}, err
		}
		return MarginDocument(report, rng), nil
	case PurchasesBySupplier:
		rows, err := s.PurchasesBySupplier(ctx, rng)
		if err != nil {
			return export.Document{}, err
		}
		return SupplierDocument(rows, rng), nil
	case TopProducts:
		rows, err := s.TopProducts(ctx, rng)
		if err != nil {
			return export.Document{}, err
		}
		return TopProductsDocument(rows, rng), nil
	default:
		return export.Document{}, ErrUnknownReport
	}
}

// CriticalStockDocument lays out the critical stock report.
func CriticalStockDocument(rows []CriticalStockRow) export.Document {
	cells := make([][]export.Cell, 0, len(rows))
	out := 0
	for _, r := range rows {
		minStock := export.Text("-")
		if r.MinStock != nil {
			minStock = export.Number(int64(*r.MinStock))
		}
		if r.Status == inventory.StockOutOfStock {
			out++
		}
		cells = append(cells, []export.Cell{
			export.Text(r.Code),
			export.Text(r.Name),
			export.Text(r.CategoryName),
			export.Number(int64(r.Stock)),
			minStock,
			export.Text(string(r.Status)),
		})
	}
	return export.Format("Critical Stock Report",
		[]string{"Code", "Product", "Category", "Stock", "Min Stock", "Status"},
		cells,
		[]export.SummaryEntry{
			{Label: "Total Products", Value: export.Number(int64(len(rows)))},
			{Label: "Out of Stock", Value: export.Number(int64(out))},
		})
}

// ExpiringDocument lays out the expiring products report.
func ExpiringDocument(rows []ExpiringRow) export.Document {
	cells := make([][]export.Cell, 0, len(rows))
	expired := 0
	for _, r := range rows {
		if r.Urgency == inventory.ReportExpired {
			expired++
		}
		cells = append(cells, []export.Cell{
			export.Text(r.Name),
			export.Text(r.ExpiryDate),
			export.Number(int64(r.Stock)),
			export.Text(r.DaysLabel),
			export.Text(string(r.Urgency)),
		})
	}
	return export.Format("Expiring Products Report",
		[]string{"Product", "Expiry Date", "Stock", "Days Remaining", "Urgency"},
		cells,
		[]export.SummaryEntry{
			{Label: "Total Products", Value: export.Number(int64(len(rows)))},
			{Label: "Expired", Value: export.Number(int64(expired))},
		})
}

// MarginDocument lays out margin by product with totals as the summary.
func MarginDocument(report MarginReport, rng Range) export.Document {
	cells := make([][]export.Cell, 0, len(report.Rows))
	for _, r := range report.Rows {
		cells = append(cells, []export.Cell{
			export.Text(r.Name),
			export.Number(int64(r.QtySold)),
			export.Money(r.Revenue),
			export.Money(r.Cost),
			export.Money(r.Margin),
			export.Text(percentLabel(r.MarginPercent)),
		})
	}
	t := report.Totals
	return export.Format(titleWithRange("Margin Report", rng),
		[]string{"Product", "Qty Sold", "Revenue", "Cost", "Margin", "Margin %"},
		cells,
		[]export.SummaryEntry{
			{Label: "Total Revenue", Value: export.Money(t.Revenue)},
			{Label: "Total Cost", Value: export.Money(t.Cost)},
			{Label: "Total Margin", Value: export.Money(t.Margin)},
			{Label: "Margin %", Value: export.Text(percentLabel(t.MarginPercent))},
		})
}

// SupplierDocument lays out purchases grouped by supplier.
func SupplierDocument(rows []SupplierRow, rng Range) export.Document {
	cells := make([][]export.Cell, 0, len(rows))
	totals := make([]decimal.Decimal, 0, len(rows))
	for _, r := range rows {
		totals = append(totals, r.Total)
		cells = append(cells, []export.Cell{
			export.Text(r.SupplierName),
			export.Number(int64(r.PurchaseCount)),
			export.Number(int64(r.TotalQty)),
			export.Money(r.Total),
		})
	}
	return export.Format(titleWithRange("Purchases by Supplier", rng),
		[]string{"Supplier", "Purchases", "Qty", "Total"},
		cells,
		[]export.SummaryEntry{
			{Label: "Suppliers", Value: export.Number(int64(len(rows)))},
			{Label: "Total Purchases", Value: export.Money(money.Sum(totals...))},
		})
}

// TopProductsDocument lays out the best sellers with their rank.
func TopProductsDocument(rows []TopProductRow, rng Range) export.Document {
	cells := make([][]export.Cell, 0, len(rows))
	revenue := make([]decimal.Decimal, 0, len(rows))
	for i, r := range rows {
		revenue = append(revenue, r.Revenue)
		cells = append(cells, []export.Cell{
			export.Number(int64(i + 1)),
			export.Text(r.Name),
			export.Number(int64(r.QtySold)),
			export.Money(r.Revenue),
		})
	}
	return export.Format(titleWithRange("Top Products", rng),
		[]string{"Rank", "Product", "Qty Sold", "Revenue"},
		cells,
		[]export.SummaryEntry{
			{Label: "Total Revenue", Value: export.Money(money.Sum(revenue...))},
		})
}

func percentLabel(v decimal.Decimal) string {
	return v.StringFixed(2) + "%"
}
