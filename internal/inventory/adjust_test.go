package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	value int
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.value
	return nil
}

// fakeStock applies the same guard as the UPDATE statement.
type fakeStock struct {
	stock map[int64]int
}

func (f *fakeStock) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	id := args[0].(int64)
	current, ok := f.stock[id]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	if strings.HasPrefix(sql, "UPDATE") {
		delta := args[1].(int)
		if current+delta < 0 {
			return fakeRow{err: pgx.ErrNoRows}
		}
		f.stock[id] = current + delta
		return fakeRow{value: current + delta}
	}
	return fakeRow{value: current}
}

func TestAdjustStock(t *testing.T) {
	q := &fakeStock{stock: map[int64]int{1: 5}}
	ctx := context.Background()

	got, err := AdjustStock(ctx, q, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, got)

	_, err = AdjustStock(ctx, q, 1, -10)
	var shortage *ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 8, shortage.Available)
	assert.Equal(t, 10, shortage.Requested)
	assert.Equal(t, 8, q.stock[1])

	_, err = AdjustStock(ctx, q, 99, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestNetMovements(t *testing.T) {
	before := map[int64]int{1: 5, 2: 3, 3: 4}
	after := map[int64]int{3: 4, 2: 1, 9: 2}

	assert.Equal(t, []Movement{
		{ProductID: 1, Delta: -5},
		{ProductID: 2, Delta: -2},
		{ProductID: 9, Delta: 2},
	}, NetMovements(before, after))

	assert.Empty(t, NetMovements(nil, nil))
}
