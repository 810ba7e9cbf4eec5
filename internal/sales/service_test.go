package sales

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/lineitems"
	"github.com/minimarket/minimarket/internal/platform/httpx"
	"github.com/minimarket/minimarket/internal/rbac"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	sales  map[int64]Sale
	stock  map[int64]int
	nextID int64
}

type mockTx struct {
	repo  *mockRepository
	sales map[int64]Sale
	stock map[int64]int
}

func newMockRepository(stock map[int64]int) *mockRepository {
	return &mockRepository{sales: map[int64]Sale{}, stock: stock}
}

func (r *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &mockTx{repo: r, sales: map[int64]Sale{}, stock: map[int64]int{}}
	for k, v := range r.sales {
		tx.sales[k] = v
	}
	for k, v := range r.stock {
		tx.stock[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.sales, r.stock = tx.sales, tx.stock
	return nil
}

func (r *mockRepository) Get(_ context.Context, id int64) (Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return Sale{}, ErrNotFound
	}
	return s, nil
}

func (r *mockRepository) List(context.Context, ListFilter) ([]Sale, int, error) {
	out := make([]Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (tx *mockTx) InsertSale(_ context.Context, s Sale) (int64, error) {
	tx.repo.nextID++
	s.ID = tx.repo.nextID
	tx.sales[s.ID] = s
	return s.ID, nil
}

func (tx *mockTx) UpdateSale(_ context.Context, s Sale) error {
	if _, ok := tx.sales[s.ID]; !ok {
		return ErrNotFound
	}
	tx.sales[s.ID] = s
	return nil
}

func (tx *mockTx) LockItems(_ context.Context, id int64) ([]SaleItem, error) {
	s, ok := tx.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Items, nil
}

func (tx *mockTx) ReplaceItems(_ context.Context, id int64, items []SaleItem) error {
	s := tx.sales[id]
	s.Items = items
	tx.sales[id] = s
	return nil
}

func (tx *mockTx) DeleteSale(_ context.Context, id int64) error {
	delete(tx.sales, id)
	return nil
}

func (tx *mockTx) AdjustStock(_ context.Context, productID int64, delta int) (int, error) {
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

func intPtr(v int) *int { return &v }

func saleInput(items ...ItemInput) SaleInput {
	return SaleInput{SaleDate: "2025-03-02", Items: items}
}

// ============================================================================
// SERVICE
// ============================================================================

func TestCreateSaleTakesStock(t *testing.T) {
	repo := newMockRepository(map[int64]int{1: 20})
	svc := NewService(repo, nil, nil)

	s, err := svc.Create(context.Background(), 4, saleInput(
		ItemInput{ProductID: 1, Qty: 3, UnitPrice: decimal.RequireFromString("5.00"), Stock: intPtr(20)},
	))
	require.NoError(t, err)
	assert.Equal(t, "15.00", s.Total.StringFixed(2))
	assert.Equal(t, 17, repo.stock[1])
}

func TestCreateSaleAdvisoryStockCheck(t *testing.T) {
	svc := NewService(newMockRepository(map[int64]int{1: 20}), nil, nil)

	_, err := svc.Create(context.Background(), 4, saleInput(
		ItemInput{ProductID: 1, Qty: 3, UnitPrice: decimal.NewFromInt(5), Stock: intPtr(2)},
	))
	var subErr *lineitems.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, lineitems.CodeInsufficientStock, subErr.Code())
}

func TestCreateSaleAuthoritativeStockCheck(t *testing.T) {
	repo := newMockRepository(map[int64]int{1: 2})
	svc := NewService(repo, nil, nil)

	// client thinks there are 20 left; the database knows better
	_, err := svc.Create(context.Background(), 4, saleInput(
		ItemInput{ProductID: 1, Qty: 3, UnitPrice: decimal.NewFromInt(5), Stock: intPtr(20)},
	))
	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "insufficient stock, 2 available", fields["items.0.qty"])
	assert.Equal(t, 2, repo.stock[1])
	assert.Empty(t, repo.sales)
}

func TestUpdateSaleCountsReleasedQuantity(t *testing.T) {
	repo := newMockRepository(map[int64]int{1: 5})
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	s, err := svc.Create(ctx, 1, saleInput(ItemInput{ProductID: 1, Qty: 5, UnitPrice: decimal.NewFromInt(1)}))
	require.NoError(t, err)
	require.Equal(t, 0, repo.stock[1])

	// re-selling the same five units is fine, six is not
	_, err = svc.Update(ctx, s.ID, saleInput(ItemInput{ProductID: 1, Qty: 5, UnitPrice: decimal.NewFromInt(2)}))
	require.NoError(t, err)
	_, err = svc.Update(ctx, s.ID, saleInput(ItemInput{ProductID: 1, Qty: 6, UnitPrice: decimal.NewFromInt(2)}))
	assert.ErrorIs(t, err, httpx.ErrValidation)

	require.NoError(t, svc.Delete(ctx, s.ID))
	assert.Equal(t, 5, repo.stock[1])
}

// ============================================================================
// HANDLER
// ============================================================================

func newRouter(svc *Service, roles ...string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p := rbac.Principal{UserID: 5, Capabilities: rbac.NormalizeRoles(roles)}
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/sales", NewHandler(slog.Default(), svc, rbac.Middleware{}).MountRoutes)
	return r
}

func TestHandlerCreateSale(t *testing.T) {
	repo := newMockRepository(map[int64]int{1: 20})
	router := newRouter(NewService(repo, nil, nil), "staff")

	body := `{"sale_date":"2025-03-02","items":[{"product_id":1,"qty":3,"unit_price":"5.00"}]}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "/sales/1", res.Header().Get("Location"))
	assert.Equal(t, int64(5), repo.sales[1].CreatedBy)
}

func TestHandlerRejectsEmptySale(t *testing.T) {
	router := newRouter(NewService(newMockRepository(nil), nil, nil), "staff")

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{"sale_date":"2025-03-02","items":[]}`)))

	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.NewDecoder(res.Body).Decode(&problem))
	assert.Equal(t, "EMPTY_ITEMS", problem.Code)
}

func TestHandlerDeleteRequiresAdmin(t *testing.T) {
	router := newRouter(NewService(newMockRepository(nil), nil, nil), "staff")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/sales/1", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)
}
