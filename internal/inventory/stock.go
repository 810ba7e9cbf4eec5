package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/minimarket/minimarket/internal/platform/httpx"
)

// ErrProductNotFound is returned when a stock movement targets a missing product.
var ErrProductNotFound = fmt.Errorf("product %w", httpx.ErrNotFound)

// ErrInsufficientStock matches every *ShortageError.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// ShortageError reports a movement that would drive stock below zero.
type ShortageError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("inventory: product %d has %d in stock, %d requested", e.ProductID, e.Available, e.Requested)
}

func (e *ShortageError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Querier is satisfied by pgx.Tx and *pgxpool.Pool.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AdjustStock adds delta to a product's stock and returns the new level.
// Movements that would make stock negative fail with *ShortageError and leave
// the row untouched.
func AdjustStock(ctx context.Context, q Querier, productID int64, delta int) (int, error) {
	var stock int
	err := q.QueryRow(ctx, `UPDATE products SET stock = stock + $2, updated_at = NOW()
WHERE id = $1 AND stock + $2 >= 0 RETURNING stock`, productID, delta).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("inventory: adjust stock: %w", err)
	}
	err = q.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("inventory: read stock: %w", err)
	}
	return 0, &ShortageError{ProductID: productID, Available: stock, Requested: -delta}
}

// Movement is a net stock change for one product.
type Movement struct {
	ProductID int64
	Delta     int
}

// NetMovements returns after minus before per product, sorted by product id so
// concurrent transactions lock rows in the same order. Zero deltas are dropped.
func NetMovements(before, after map[int64]int) []Movement {
	deltas := make(map[int64]int, len(before)+len(after))
	for id, qty := range after {
		deltas[id] += qty
	}
	for id, qty := range before {
		deltas[id] -= qty
	}
	out := make([]Movement, 0, len(deltas))
	for id, d := range deltas {
		if d != 0 {
			out = append(out, Movement{ProductID: id, Delta: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
