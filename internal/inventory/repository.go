package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads alert candidates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StockCandidates returns products that may need restocking, cheapest filter first;
// the final classification happens in Go.
func (r *Repository) StockCandidates(ctx context.Context) ([]Candidate, error) {
	return r.query(ctx, `SELECT id, name, stock, min_stock, expiry_date
FROM products
WHERE stock = 0 OR (min_stock IS NOT NULL AND stock <= 2 * min_stock)
ORDER BY stock ASC, name ASC`)
}

// ExpiryCandidates returns products with an expiry date on or before until.
func (r *Repository) ExpiryCandidates(ctx context.Context, until time.Time) ([]Candidate, error) {
	return r.query(ctx, `SELECT id, name, stock, min_stock, expiry_date
FROM products
WHERE expiry_date IS NOT NULL AND expiry_date <= $1::date
ORDER BY expiry_date ASC, name ASC`, until.Format(DateLayout))
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("inventory: query candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var (
			c      Candidate
			expiry *time.Time
		)
		if err := rows.Scan(&c.ProductID, &c.Name, &c.Stock, &c.MinStock, &expiry); err != nil {
			return nil, err
		}
		if expiry != nil {
			c.ExpiryDate = expiry.Format(DateLayout)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
