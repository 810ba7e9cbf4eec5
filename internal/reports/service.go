package reports

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/money"
)

// RepositoryPort exposes the raw report queries.
type RepositoryPort interface {
	CriticalStock(ctx context.Context) ([]CriticalStockRow, error)
	Expiring(ctx context.Context, until time.Time) ([]ExpiryRow, error)
	MarginByProduct(ctx context.Context, rng Range) ([]MarginRow, error)
	PurchasesBySupplier(ctx context.Context, rng Range) ([]SupplierRow, error)
	TopProducts(ctx context.Context, rng Range, limit int) ([]TopProductRow, error)
}

// CachePort stores computed reports.
type CachePort interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// ServiceConfig tunes report windows.
type ServiceConfig struct {
	ExpiryWindowDays int
	TopProductsLimit int
}

// Service computes reports through the cache.
type Service struct {
	repo   RepositoryPort
	cache  CachePort
	cfg    ServiceConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the report service.
func NewService(repo RepositoryPort, cache CachePort, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.ExpiryWindowDays <= 0 {
		cfg.ExpiryWindowDays = 30
	}
	if cfg.TopProductsLimit <= 0 {
		cfg.TopProductsLimit = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, cfg: cfg, logger: logger, now: time.Now}
}

func cached[T any](ctx context.Context, s *Service, name Name, parts []string, load func(context.Context) (T, error)) (T, error) {
	var out T
	key, err := s.cache.BuildKey(ctx, append([]string{string(name)}, parts...)...)
	if err != nil {
		return out, err
	}
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		start := time.Now()
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("report computed", slog.String("report", string(name)), slog.Duration("took", time.Since(start)))
		return value, nil
	})
	return out, err
}

// CriticalStock lists products out of stock or at or below their minimum.
func (s *Service) CriticalStock(ctx context.Context) ([]CriticalStockRow, error) {
	return cached(ctx, s, CriticalStock, nil, func(ctx context.Context) ([]CriticalStockRow, error) {
		rows, err := s.repo.CriticalStock(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].Status = inventory.ClassifyStock(rows[i].Stock, rows[i].MinStock)
		}
		return rows, nil
	})
}

// Expiring lists products expiring within the window, or up to rng.To when set,
// bucketed with the report urgency scheme.
func (s *Service) Expiring(ctx context.Context, rng Range) ([]ExpiringRow, error) {
	now := s.now()
	until := now.AddDate(0, 0, s.cfg.ExpiryWindowDays)
	if rng.To != nil {
		until = *rng.To
	}
	parts := []string{now.Format(inventory.DateLayout), until.Format(inventory.DateLayout)}
	return cached(ctx, s, Expiring, parts, func(ctx context.Context) ([]ExpiringRow, error) {
		raw, err := s.repo.Expiring(ctx, until)
		if err != nil {
			return nil, err
		}
		return BuildExpiring(raw, now), nil
	})
}

// BuildExpiring computes days remaining and report urgency for each row.
func BuildExpiring(raw []ExpiryRow, now time.Time) []ExpiringRow {
	out := make([]ExpiringRow, 0, len(raw))
	for _, r := range raw {
		row := ExpiringRow{ProductID: r.ProductID, Name: r.Name, ExpiryDate: r.ExpiryDate, Stock: r.Stock}
		days, err := inventory.DaysRemainingFrom(r.ExpiryDate, now)
		row.DaysLabel = inventory.FormatDays(days, err)
		if err != nil {
			row.Urgency = inventory.ReportUnknown
		} else {
			row.DaysRemaining = &days
			row.Urgency = inventory.ReportUrgencyOf(days)
		}
		out = append(out, row)
	}
	return out
}

// Margin returns margin by product plus totals.
func (s *Service) Margin(ctx context.Context, rng Range) (MarginReport, error) {
	return cached(ctx, s, Margin, []string{rng.token()}, func(ctx context.Context) (MarginReport, error) {
		rows, err := s.repo.MarginByProduct(ctx, rng)
		if err != nil {
			return MarginReport{}, err
		}
		return BuildMargin(rows), nil
	})
}

// BuildMargin fills per-row margins and the totals.
func BuildMargin(rows []MarginRow) MarginReport {
	report := MarginReport{Rows: make([]MarginRow, 0, len(rows))}
	revenue := make([]decimal.Decimal, 0, len(rows))
	cost := make([]decimal.Decimal, 0, len(rows))
	for _, r := range rows {
		r.Revenue = money.Round(r.Revenue)
		r.Cost = money.Round(r.Cost)
		r.Margin = r.Revenue.Sub(r.Cost)
		r.MarginPercent = percent(r.Margin, r.Revenue)
		revenue = append(revenue, r.Revenue)
		cost = append(cost, r.Cost)
		report.Rows = append(report.Rows, r)
	}
	t := MarginTotals{Revenue: money.Sum(revenue...), Cost: money.Sum(cost...)}
	t.Margin = t.Revenue.Sub(t.Cost)
	t.MarginPercent = percent(t.Margin, t.Revenue)
	report.Totals = t
	return report
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return money.Round(part.Div(whole).Mul(decimal.NewFromInt(100)))
}

// PurchasesBySupplier aggregates purchases per supplier.
func (s *Service) PurchasesBySupplier(ctx context.Context, rng Range) ([]SupplierRow, error) {
	return cached(ctx, s, PurchasesBySupplier, []string{rng.token()}, func(ctx context.Context) ([]SupplierRow, error) {
		return s.repo.PurchasesBySupplier(ctx, rng)
	})
}

// TopProducts ranks the best selling products.
func (s *Service) TopProducts(ctx context.Context, rng Range) ([]TopProductRow, error) {
	return cached(ctx, s, TopProducts, []string{rng.token()}, func(ctx context.Context) ([]TopProductRow, error) {
		return s.repo.TopProducts(ctx, rng, s.cfg.TopProductsLimit)
	})
}

// Dashboard loads every report concurrently.
func (s *Service) Dashboard(ctx context.Context, rng Range) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.CriticalStock, err = s.CriticalStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Expiring, err = s.Expiring(gctx, rng)
		return err
	})
	g.Go(func() (err error) {
		d.Margin, err = s.Margin(gctx, rng)
		return err
	})
	g.Go(func() (err error) {
		d.PurchasesBySupplier, err = s.PurchasesBySupplier(gctx, rng)
		return err
	})
	g.Go(func() (err error) {
		d.TopProducts, err = s.TopProducts(gctx, rng)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	d.GeneratedAt = s.now()
	return d, nil
}

// Load returns the data of one report by name.
func (s *Service) Load(ctx context.Context, name Name, rng Range) (any, error) {
	switch name {
	case CriticalStock:
		return s.CriticalStock(ctx)
	case Expiring:
		return s.Expiring(ctx, rng)
	case Margin:
		return s.Margin(ctx, rng)
	case PurchasesBySupplier:
		return s.PurchasesBySupplier(ctx, rng)
	case TopProducts:
		return s.TopProducts(ctx, rng)
	default:
		return nil, ErrUnknownReport
	}
}
