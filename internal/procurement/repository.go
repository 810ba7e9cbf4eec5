package procurement

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/platform/db"
)

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
	InsertPurchase(ctx context.Context, p Purchase) (int64, error)
	UpdatePurchase(ctx context.Context, p Purchase) error
	LockItems(ctx context.Context, purchaseID int64) ([]PurchaseItem, error)
	ReplaceItems(ctx context.Context, purchaseID int64, items []PurchaseItem) error
	DeletePurchase(ctx context.Context, id int64) error
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

const selectPurchase = `SELECT id, supplier_name, purchase_date, total, created_by, created_at, updated_at FROM purchases`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.SupplierName, &p.PurchaseDate, &p.Total, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, ErrNotFound
	}
	return p, err
}

// Get returns a purchase and its items.
func (r *Repository) Get(ctx context.Context, id int64) (Purchase, error) {
	p, err := scanPurchase(r.pool.QueryRow(ctx, selectPurchase+` WHERE id = $1`, id))
	if err != nil {
		return Purchase{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.product_id, p.name, i.qty, i.unit_cost, i.subtotal
FROM purchase_items i JOIN products p ON p.id = i.product_id
WHERE i.purchase_id = $1 ORDER BY i.id`, id)
	if err != nil {
		return Purchase{}, fmt.Errorf("procurement: items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it PurchaseItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Qty, &it.UnitCost, &it.Subtotal); err != nil {
			return Purchase{}, err
		}
		p.Items = append(p.Items, it)
	}
	return p, rows.Err()
}

// List returns purchase headers, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += ` AND supplier_name ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += ` AND purchase_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += ` AND purchase_date <= $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := selectPurchase + where + ` ORDER BY purchase_date DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *txRepo) InsertPurchase(ctx context.Context, p Purchase) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchases (supplier_name, purchase_date, total, created_by)
VALUES ($1, $2, $3, $4) RETURNING id`, p.SupplierName, p.PurchaseDate, p.Total, p.CreatedBy).Scan(&id)
	return id, err
}

func (r *txRepo) UpdatePurchase(ctx context.Context, p Purchase) error {
	tag, err := r.tx.Exec(ctx, `UPDATE purchases SET supplier_name = $1, purchase_date = $2, total = $3, updated_at = NOW()
WHERE id = $4`, p.SupplierName, p.PurchaseDate, p.Total, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LockItems locks the purchase row and returns its current items.
func (r *txRepo) LockItems(ctx context.Context, purchaseID int64) ([]PurchaseItem, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM purchases WHERE id = $1 FOR UPDATE`, purchaseID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.tx.Query(ctx, `SELECT id, product_id, qty, unit_cost, subtotal FROM purchase_items WHERE purchase_id = $1 ORDER BY id`, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PurchaseItem
	for rows.Next() {
		var it PurchaseItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Qty, &it.UnitCost, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *txRepo) ReplaceItems(ctx context.Context, purchaseID int64, items []PurchaseItem) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, purchaseID); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`INSERT INTO purchase_items (purchase_id, product_id, qty, unit_cost, subtotal) VALUES ($1, $2, $3, $4, $5)`,
			purchaseID, it.ProductID, it.Qty, it.UnitCost, it.Subtotal)
	}
	return r.tx.SendBatch(ctx, batch).Close()
}

func (r *txRepo) DeletePurchase(ctx context.Context, id int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, id); err != nil {
		return err
	}
	_, err := r.tx.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	return err
}

func (r *txRepo) AdjustStock(ctx context.Context, productID int64, delta int) (int, error) {
	return inventory.AdjustStock(ctx, r.tx, productID, delta)
}

var _ RepositoryPort = (*Repository)(nil)
