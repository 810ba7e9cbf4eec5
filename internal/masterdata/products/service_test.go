package products

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/masterdata/shared"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

type mockRepo struct {
	items    []Product
	saved    Product
	writeErr error
}

func (m *mockRepo) List(context.Context, shared.ListFilters) ([]Product, int, error) {
	return m.items, len(m.items), nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (Product, error) {
	for _, p := range m.items {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, shared.ErrNotFound
}

func (m *mockRepo) Create(_ context.Context, p Product) (Product, error) {
	if m.writeErr != nil {
		return Product{}, m.writeErr
	}
	p.ID = 10
	m.saved = p
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p Product) (Product, error) {
	if m.writeErr != nil {
		return Product{}, m.writeErr
	}
	m.saved = p
	return p, nil
}

func (m *mockRepo) Delete(context.Context, int64) error {
	return m.writeErr
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func validForm() ProductForm {
	return ProductForm{
		Code:       " PCT-500 ",
		Name:       "Paracetamol",
		CategoryID: 1,
		UnitCost:   decimal.RequireFromString("3.50"),
		UnitPrice:  decimal.RequireFromString("5.00"),
		Stock:      9,
		MinStock:   intPtr(5),
		ExpiryDate: strPtr("2026-12-31T00:00:00Z"),
	}
}

func TestListDerivesStockStatus(t *testing.T) {
	repo := &mockRepo{items: []Product{
		{ID: 1, Stock: 5, MinStock: intPtr(5)},
		{ID: 2, Stock: 9, MinStock: intPtr(5)},
		{ID: 3, Stock: 11, MinStock: intPtr(5)},
		{ID: 4, Stock: 0},
	}}
	items, total, err := NewService(repo).List(context.Background(), shared.ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, inventory.StockCritical, items[0].StockStatus)
	assert.Equal(t, inventory.StockWarning, items[1].StockStatus)
	assert.Equal(t, inventory.StockLow, items[2].StockStatus)
	assert.Equal(t, inventory.StockOutOfStock, items[3].StockStatus)
}

func TestCreateNormalizes(t *testing.T) {
	repo := &mockRepo{}
	p, err := NewService(repo).Create(context.Background(), validForm())
	require.NoError(t, err)

	assert.Equal(t, "PCT-500", repo.saved.Code)
	require.NotNil(t, repo.saved.ExpiryDate)
	assert.Equal(t, "2026-12-31", *repo.saved.ExpiryDate)
	assert.Equal(t, inventory.StockWarning, p.StockStatus)
}

func TestCreateFieldErrors(t *testing.T) {
	form := validForm()
	form.Code = ""
	form.UnitPrice = decimal.NewFromInt(-1)
	form.Stock = -3
	form.ExpiryDate = strPtr("31/12/2026")

	_, err := NewService(&mockRepo{}).Create(context.Background(), form)
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "code")
	assert.Contains(t, fields, "unit_price")
	assert.Contains(t, fields, "stock")
	assert.Contains(t, fields, "expiry_date")
	assert.NotContains(t, fields, "unit_cost")
}

func TestWriteErrorMapping(t *testing.T) {
	svc := NewService(&mockRepo{writeErr: &pgconn.PgError{Code: "23503", ConstraintName: categoryFK}})
	_, err := svc.Create(context.Background(), validForm())
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "does not exist", fields["category_id"])

	svc = NewService(&mockRepo{writeErr: &pgconn.PgError{Code: "23503", ConstraintName: "sale_items_product_id_fkey"}})
	assert.ErrorIs(t, svc.Delete(context.Background(), 1), shared.ErrInUse)

	svc = NewService(&mockRepo{writeErr: &pgconn.PgError{Code: "23505"}})
	_, err = svc.Update(context.Background(), 1, validForm())
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "code")
}

func TestCatalog(t *testing.T) {
	repo := &mockRepo{items: []Product{{ID: 1, Name: "Paracetamol", UnitPrice: decimal.RequireFromString("5"), Stock: 20}}}
	catalog, err := NewService(repo).Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Paracetamol", catalog[0].Name)
	assert.Equal(t, 20, catalog[0].Stock)
}
