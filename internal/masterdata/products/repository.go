package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectProducts = `SELECT p.id, p.code, p.name, p.category_id, COALESCE(c.name, ''),
	p.unit_cost, p.unit_price, p.stock, p.min_stock, p.expiry_date, p.image, p.created_at, p.updated_at
FROM products p LEFT JOIN categories c ON c.id = p.category_id`

// stockStatusExpr mirrors inventory.ClassifyStock for filtering in SQL.
const stockStatusExpr = `CASE
	WHEN p.stock = 0 THEN 'OUT_OF_STOCK'
	WHEN p.min_stock IS NOT NULL AND p.stock <= p.min_stock THEN 'CRITICAL'
	WHEN p.min_stock IS NOT NULL AND p.stock <= 2 * p.min_stock THEN 'WARNING'
	ELSE 'LOW' END`

var sortable = map[string]string{
	"code":        "p.code",
	"name":        "p.name",
	"stock":       "p.stock",
	"unit_price":  "p.unit_price",
	"unit_cost":   "p.unit_cost",
	"expiry_date": "p.expiry_date",
	"created_at":  "p.created_at",
}

func scan(row pgx.Row) (Product, error) {
	var (
		p      Product
		expiry *time.Time
	)
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.CategoryID, &p.CategoryName,
		&p.UnitCost, &p.UnitPrice, &p.Stock, &p.MinStock, &expiry, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	if expiry != nil {
		formatted := expiry.Format(inventory.DateLayout)
		p.ExpiryDate = &formatted
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += ` AND p.category_id = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (p.name ILIKE $` + n + ` OR p.code ILIKE $` + n + `)`
	}
	if filters.StockStatus != "" {
		args = append(args, filters.StockStatus)
		where += ` AND ` + stockStatusExpr + ` = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectProducts + where + ` ORDER BY ` + shared.SortOrder(filters.SortBy, filters.SortDir, sortable, "p.name")
	if filters.Limit > 0 {
		args = append(args, filters.Limit, filters.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	return scan(r.db.QueryRow(ctx, selectProducts+` WHERE p.id = $1`, id))
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO products
	(code, name, category_id, unit_cost, unit_price, stock, min_stock, expiry_date, image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date, $9) RETURNING id`,
		p.Code, p.Name, p.CategoryID, p.UnitCost, p.UnitPrice, p.Stock, p.MinStock, p.ExpiryDate, p.Image).Scan(&id)
	if err != nil {
		return Product{}, err
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, p Product) (Product, error) {
	tag, err := r.db.Exec(ctx, `UPDATE products SET code = $1, name = $2, category_id = $3, unit_cost = $4,
	unit_price = $5, stock = $6, min_stock = $7, expiry_date = $8::date, image = $9, updated_at = NOW()
WHERE id = $10`,
		p.Code, p.Name, p.CategoryID, p.UnitCost, p.UnitPrice, p.Stock, p.MinStock, p.ExpiryDate, p.Image, p.ID)
	if err != nil {
		return Product{}, err
	}
	if tag.RowsAffected() == 0 {
		return Product{}, shared.ErrNotFound
	}
	return r.Get(ctx, p.ID)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
