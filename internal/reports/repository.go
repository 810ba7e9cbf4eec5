package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimarket/minimarket/internal/inventory"
)

// Repository runs the report aggregations against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ExpiryRow is a raw product row with an expiry date.
type ExpiryRow struct {
	ProductID  int64
	Name       string
	Stock      int
	ExpiryDate string
}

// CriticalStock returns out-of-stock products and products at or below their minimum.
func (r *Repository) CriticalStock(ctx context.Context) ([]CriticalStockRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.code, p.name, COALESCE(c.name, ''), p.stock, p.min_stock
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.stock = 0 OR (p.min_stock IS NOT NULL AND p.stock <= p.min_stock)
ORDER BY p.stock ASC, p.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("reports: critical stock: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CriticalStockRow, error) {
		var out CriticalStockRow
		err := row.Scan(&out.ProductID, &out.Code, &out.Name, &out.CategoryName, &out.Stock, &out.MinStock)
		return out, err
	})
}

// Expiring returns products with an expiry date on or before until, expired ones included.
func (r *Repository) Expiring(ctx context.Context, until time.Time) ([]ExpiryRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, stock, expiry_date
FROM products
WHERE expiry_date IS NOT NULL AND expiry_date <= $1::date
ORDER BY expiry_date ASC, name ASC`, until.Format(inventory.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("reports: expiring: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ExpiryRow, error) {
		var (
			out    ExpiryRow
			expiry time.Time
		)
		if err := row.Scan(&out.ProductID, &out.Name, &out.Stock, &expiry); err != nil {
			return out, err
		}
		out.ExpiryDate = expiry.Format(inventory.DateLayout)
		return out, nil
	})
}

// MarginByProduct sums sale revenue and cost at current unit cost per product.
func (r *Repository) MarginByProduct(ctx context.Context, rng Range) ([]MarginRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, SUM(i.qty), SUM(i.subtotal), SUM(i.qty * p.unit_cost)
FROM sale_items i
JOIN sales s ON s.id = i.sale_id
JOIN products p ON p.id = i.product_id
WHERE ($1::date IS NULL OR s.sale_date >= $1::date)
  AND ($2::date IS NULL OR s.sale_date <= $2::date)
GROUP BY p.id, p.name
ORDER BY SUM(i.subtotal) - SUM(i.qty * p.unit_cost) DESC, p.name ASC`, rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("reports: margin: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (MarginRow, error) {
		var out MarginRow
		err := row.Scan(&out.ProductID, &out.Name, &out.QtySold, &out.Revenue, &out.Cost)
		return out, err
	})
}

// PurchasesBySupplier aggregates purchase count, quantity and spend per supplier.
func (r *Repository) PurchasesBySupplier(ctx context.Context, rng Range) ([]SupplierRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.supplier_name, COUNT(DISTINCT p.id), COALESCE(SUM(i.qty), 0), COALESCE(SUM(i.subtotal), 0)
FROM purchases p
LEFT JOIN purchase_items i ON i.purchase_id = p.id
WHERE ($1::date IS NULL OR p.purchase_date >= $1::date)
  AND ($2::date IS NULL OR p.purchase_date <= $2::date)
GROUP BY p.supplier_name
ORDER BY 4 DESC, p.supplier_name ASC`, rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("reports: purchases by supplier: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (SupplierRow, error) {
		var out SupplierRow
		err := row.Scan(&out.SupplierName, &out.PurchaseCount, &out.TotalQty, &out.Total)
		return out, err
	})
}

// TopProducts ranks products by quantity sold.
func (r *Repository) TopProducts(ctx context.Context, rng Range, limit int) ([]TopProductRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, SUM(i.qty), SUM(i.subtotal)
FROM sale_items i
JOIN sales s ON s.id = i.sale_id
JOIN products p ON p.id = i.product_id
WHERE ($1::date IS NULL OR s.sale_date >= $1::date)
  AND ($2::date IS NULL OR s.sale_date <= $2::date)
GROUP BY p.id, p.name
ORDER BY SUM(i.qty) DESC, SUM(i.subtotal) DESC, p.name ASC
LIMIT $3`, rng.From, rng.To, limit)
	if err != nil {
		return nil, fmt.Errorf("reports: top products: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TopProductRow, error) {
		var out TopProductRow
		err := row.Scan(&out.ProductID, &out.Name, &out.QtySold, &out.Revenue)
		return out, err
	})
}
