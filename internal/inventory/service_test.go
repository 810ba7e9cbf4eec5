package inventory

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimarket/minimarket/internal/rbac"
)

type memoryRepo struct {
	stock  []Candidate
	expiry []Candidate
	until  time.Time
}

func (r *memoryRepo) StockCandidates(context.Context) ([]Candidate, error) {
	return r.stock, nil
}

func (r *memoryRepo) ExpiryCandidates(_ context.Context, until time.Time) ([]Candidate, error) {
	r.until = until
	return r.expiry, nil
}

var fixedNow = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *memoryRepo) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(repo, NewDismissalStore(client), ServiceConfig{ExpiryWindowDays: 30, DismissTTL: time.Hour}, slog.Default())
	svc.now = func() time.Time { return fixedNow }
	return svc, mr
}

func TestStockAlertsSkipLow(t *testing.T) {
	repo := &memoryRepo{stock: []Candidate{
		{ProductID: 1, Name: "Habis", Stock: 0},
		{ProductID: 2, Name: "Kritis", Stock: 5, MinStock: intPtr(5)},
		{ProductID: 3, Name: "Waspada", Stock: 9, MinStock: intPtr(5)},
		{ProductID: 4, Name: "Aman", Stock: 11, MinStock: intPtr(5)},
	}}
	svc, _ := newTestService(t, repo)

	widget, err := svc.StockAlerts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, widget.Entries, 3)
	assert.Equal(t, StockOutOfStock, widget.Entries[0].Status)
	assert.Equal(t, StockCritical, widget.Entries[1].Status)
	assert.Equal(t, StockWarning, widget.Entries[2].Status)
}

func TestExpiryAlertsUseAlertScheme(t *testing.T) {
	repo := &memoryRepo{expiry: []Candidate{
		{ProductID: 1, Name: "Kedaluwarsa", ExpiryDate: "2025-02-20"},
		{ProductID: 2, Name: "Delapan hari", ExpiryDate: "2025-03-09"},
		{ProductID: 3, Name: "Rusak", ExpiryDate: "20/03/2025"},
	}}
	svc, _ := newTestService(t, repo)

	widget, err := svc.ExpiryAlerts(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), repo.until)
	require.Len(t, widget.Entries, 3)

	assert.Equal(t, AlertHigh, widget.Entries[0].Urgency)
	require.NotNil(t, widget.Entries[1].DaysRemaining)
	assert.Equal(t, 8, *widget.Entries[1].DaysRemaining)
	assert.Equal(t, AlertMedium, widget.Entries[1].Urgency)
	assert.Nil(t, widget.Entries[2].DaysRemaining)
	assert.Equal(t, MissingDays, widget.Entries[2].DaysLabel)
	assert.Equal(t, AlertUnknown, widget.Entries[2].Urgency)
}

func TestDismissHidesWidgetPerUser(t *testing.T) {
	repo := &memoryRepo{stock: []Candidate{{ProductID: 1, Stock: 0}}}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	require.NoError(t, svc.Dismiss(ctx, 7, AlertKindStock))

	widget, err := svc.StockAlerts(ctx, 7)
	require.NoError(t, err)
	assert.True(t, widget.Dismissed)
	assert.Empty(t, widget.Entries)

	other, err := svc.StockAlerts(ctx, 8)
	require.NoError(t, err)
	assert.False(t, other.Dismissed)
	assert.Len(t, other.Entries, 1)

	mr.FastForward(2 * time.Hour)
	widget, err = svc.StockAlerts(ctx, 7)
	require.NoError(t, err)
	assert.False(t, widget.Dismissed)

	assert.ErrorIs(t, svc.Dismiss(ctx, 7, AlertKind("bogus")), ErrUnknownAlertKind)
}

func TestScanCounts(t *testing.T) {
	repo := &memoryRepo{
		stock: []Candidate{{Stock: 0}, {Stock: 2, MinStock: intPtr(3)}, {Stock: 5, MinStock: intPtr(3)}},
		expiry: []Candidate{
			{ExpiryDate: "2025-03-01"},
			{ExpiryDate: "2025-03-20"},
			{ExpiryDate: "bad"},
		},
	}
	svc, _ := newTestService(t, repo)

	summary, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScanSummary{OutOfStock: 1, Critical: 1, Warning: 1, Expired: 1, Expiring: 1, BadDates: 1}, summary)
}

func TestHandlerDismissUnknownKind(t *testing.T) {
	svc, _ := newTestService(t, &memoryRepo{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), rbac.Principal{UserID: 3})))
		})
	})
	r.Route("/alerts", NewHandler(slog.Default(), svc).MountRoutes)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/alerts/nope/dismiss", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/alerts/expiry/dismiss", nil))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/alerts/expiry", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Dismissed bool `json:"dismissed"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body.Dismissed)
}
