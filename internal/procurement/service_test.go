package procurement

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/lineitems"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

type memoryProcRepo struct {
	purchases map[int64]Purchase
	stock     map[int64]int
	nextID    int64
}

type memoryProcTx struct {
	repo      *memoryProcRepo
	purchases map[int64]Purchase
	stock     map[int64]int
}

func newMemoryProcRepo(stock map[int64]int) *memoryProcRepo {
	return &memoryProcRepo{purchases: map[int64]Purchase{}, stock: stock}
}

// WithTx works on copies and only publishes them when fn succeeds.
func (r *memoryProcRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryProcTx{repo: r, purchases: map[int64]Purchase{}, stock: map[int64]int{}}
	for k, v := range r.purchases {
		tx.purchases[k] = v
	}
	for k, v := range r.stock {
		tx.stock[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.purchases, r.stock = tx.purchases, tx.stock
	return nil
}

func (r *memoryProcRepo) Get(_ context.Context, id int64) (Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return Purchase{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryProcRepo) List(context.Context, ListFilter) ([]Purchase, int, error) {
	out := make([]Purchase, 0, len(r.purchases))
	for _, p := range r.purchases {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (tx *memoryProcTx) InsertPurchase(_ context.Context, p Purchase) (int64, error) {
	tx.repo.nextID++
	p.ID = tx.repo.nextID
	tx.purchases[p.ID] = p
	return p.ID, nil
}

func (tx *memoryProcTx) UpdatePurchase(_ context.Context, p Purchase) error {
	if _, ok := tx.purchases[p.ID]; !ok {
		return ErrNotFound
	}
	tx.purchases[p.ID] = p
	return nil
}

func (tx *memoryProcTx) LockItems(_ context.Context, id int64) ([]PurchaseItem, error) {
	p, ok := tx.purchases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Items, nil
}

func (tx *memoryProcTx) ReplaceItems(_ context.Context, id int64, items []PurchaseItem) error {
	p := tx.purchases[id]
	p.Items = items
	tx.purchases[id] = p
	return nil
}

func (tx *memoryProcTx) DeletePurchase(_ context.Context, id int64) error {
	delete(tx.purchases, id)
	return nil
}

func (tx *memoryProcTx) AdjustStock(_ context.Context, productID int64, delta int) (int, error) {
	current, ok := tx.stock[productID]
	if !ok {
		return 0, inventory.ErrProductNotFound
	}
	if current+delta < 0 {
		return 0, &inventory.ShortageError{ProductID: productID, Available: current, Requested: -delta}
	}
	tx.stock[productID] = current + delta
	return current + delta, nil
}

type countingCache struct{ calls int }

func (c *countingCache) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func input(items ...ItemInput) PurchaseInput {
	return PurchaseInput{SupplierName: "PT Sehat", PurchaseDate: "2025-03-01", Items: items}
}

func TestCreatePurchaseAddsStock(t *testing.T) {
	repo := newMemoryProcRepo(map[int64]int{1: 2, 2: 0})
	cache := &countingCache{}
	svc := NewService(repo, cache, nil)

	p, err := svc.Create(context.Background(), 9, input(
		ItemInput{ProductID: 1, Qty: 10, UnitCost: decimal.RequireFromString("3.50")},
		ItemInput{ProductID: 2, Qty: 4, UnitCost: decimal.RequireFromString("1.25")},
	))
	require.NoError(t, err)

	assert.Equal(t, "40", p.Total.String())
	assert.Equal(t, int64(9), p.CreatedBy)
	assert.Equal(t, "35", p.Items[0].Subtotal.String())
	assert.Equal(t, 12, repo.stock[1])
	assert.Equal(t, 4, repo.stock[2])
	assert.Equal(t, 1, cache.calls)
}

func TestCreatePurchaseRejections(t *testing.T) {
	svc := NewService(newMemoryProcRepo(map[int64]int{1: 0}), nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, input())
	var subErr *lineitems.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, lineitems.CodeEmptyItems, subErr.Code())

	_, err = svc.Create(ctx, 1, input(ItemInput{ProductID: 1, Qty: 0, UnitCost: decimal.NewFromInt(1)}))
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, lineitems.CodeInvalidQuantity, subErr.Code())

	_, err = svc.Create(ctx, 1, input(ItemInput{ProductID: 1, Qty: 1, UnitCost: decimal.NewFromInt(-1)}))
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, lineitems.CodeInvalidPrice, subErr.Code())

	bad := input(ItemInput{ProductID: 1, Qty: 1})
	bad.SupplierName = ""
	bad.PurchaseDate = "01/03/2025"
	_, err = svc.Create(ctx, 1, bad)
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "supplier_name")
	assert.Contains(t, fields, "purchase_date")

	_, err = svc.Create(ctx, 1, input(ItemInput{ProductID: 77, Qty: 1}))
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "does not exist", fields["items.0.product_id"])
}

func TestUpdatePurchaseMovesNetStock(t *testing.T) {
	repo := newMemoryProcRepo(map[int64]int{1: 0, 2: 0})
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, input(ItemInput{ProductID: 1, Qty: 10, UnitCost: decimal.NewFromInt(1)}))
	require.NoError(t, err)
	repo.stock[1] = 7 // three sold since

	_, err = svc.Update(ctx, p.ID, input(
		ItemInput{ProductID: 1, Qty: 6, UnitCost: decimal.NewFromInt(1)},
		ItemInput{ProductID: 2, Qty: 5, UnitCost: decimal.NewFromInt(2)},
	))
	require.NoError(t, err)
	assert.Equal(t, 3, repo.stock[1])
	assert.Equal(t, 5, repo.stock[2])

	_, err = svc.Update(ctx, p.ID, input(ItemInput{ProductID: 2, Qty: 5, UnitCost: decimal.NewFromInt(2)}))
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "items.qty")
	assert.Equal(t, 3, repo.stock[1], "failed update must not move stock")
}

func TestDeletePurchaseReversesStock(t *testing.T) {
	repo := newMemoryProcRepo(map[int64]int{1: 0})
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, input(ItemInput{ProductID: 1, Qty: 4, UnitCost: decimal.NewFromInt(1)}))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Equal(t, 0, repo.stock[1])

	assert.ErrorIs(t, svc.Delete(ctx, p.ID), httpx.ErrNotFound)
}
