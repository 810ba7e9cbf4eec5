package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/platform/db"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

const customerFK = "sales_customer_id_fkey"

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	InsertSale(ctx context.Context, s Sale) (int64, error)
	UpdateSale(ctx context.Context, s Sale) error
	LockItems(ctx context.Context, saleID int64) ([]SaleItem, error)
	ReplaceItems(ctx context.Context, saleID int64, items []SaleItem) error
	DeleteSale(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, productID int64, delta int) (int, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const selectSale = `SELECT s.id, s.customer_id, COALESCE(c.name, ''), s.sale_date, s.total, s.created_by, s.created_at, s.updated_at
FROM sales s LEFT JOIN customers c ON c.id = s.customer_id`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.CustomerID, &s.CustomerName, &s.SaleDate, &s.Total, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	return s, err
}

// Get returns a sale and its items.
func (r *Repository) Get(ctx context.Context, id int64) (Sale, error) {
	s, err := scanSale(r.pool.QueryRow(ctx, selectSale+` WHERE s.id = $1`, id))
	if err != nil {
		return Sale{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.product_id, p.name, i.qty, i.unit_price, i.subtotal
FROM sale_items i JOIN products p ON p.id = i.product_id
WHERE i.sale_id = $1 ORDER BY i.id`, id)
	if err != nil {
		return Sale{}, fmt.Errorf("sales: items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Qty, &it.UnitPrice, &it.Subtotal); err != nil {
			return Sale{}, err
		}
		s.Items = append(s.Items, it)
	}
	return s, rows.Err()
}

// List returns sale headers, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where += ` AND s.customer_id = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += ` AND s.sale_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += ` AND s.sale_date <= $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales s`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := selectSale + where + ` ORDER BY s.sale_date DESC, s.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *txRepo) InsertSale(ctx context.Context, s Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales (customer_id, sale_date, total, created_by)
VALUES ($1, $2, $3, $4) RETURNING id`, s.CustomerID, s.SaleDate, s.Total, s.CreatedBy).Scan(&id)
	return id, mapCustomerErr(err)
}

func (r *txRepo) UpdateSale(ctx context.Context, s Sale) error {
	tag, err := r.tx.Exec(ctx, `UPDATE sales SET customer_id = $1, sale_date = $2, total = $3, updated_at = NOW()
WHERE id = $4`, s.CustomerID, s.SaleDate, s.Total, s.ID)
	if err != nil {
		return mapCustomerErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LockItems locks the sale row and returns its current items.
func (r *txRepo) LockItems(ctx context.Context, saleID int64) ([]SaleItem, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM sales WHERE id = $1 FOR UPDATE`, saleID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.tx.Query(ctx, `SELECT id, product_id, qty, unit_price, subtotal FROM sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SaleItem
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Qty, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *txRepo) ReplaceItems(ctx context.Context, saleID int64, items []SaleItem) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`INSERT INTO sale_items (sale_id, product_id, qty, unit_price, subtotal) VALUES ($1, $2, $3, $4, $5)`,
			saleID, it.ProductID, it.Qty, it.UnitPrice, it.Subtotal)
	}
	return r.tx.SendBatch(ctx, batch).Close()
}

func (r *txRepo) DeleteSale(ctx context.Context, id int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, id); err != nil {
		return err
	}
	_, err := r.tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	return err
}

func (r *txRepo) AdjustStock(ctx context.Context, productID int64, delta int) (int, error) {
	return inventory.AdjustStock(ctx, r.tx, productID, delta)
}

func mapCustomerErr(err error) error {
	if db.IsForeignKeyViolation(err, customerFK) {
		return httpx.FieldErrors{"customer_id": "does not exist"}
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
