package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RepositoryPort abstracts candidate lookups for the service.
type RepositoryPort interface {
	StockCandidates(ctx context.Context) ([]Candidate, error)
	ExpiryCandidates(ctx context.Context, until time.Time) ([]Candidate, error)
}

// DismissalPort abstracts dismissal persistence.
type DismissalPort interface {
	Dismiss(ctx context.Context, userID int64, kind AlertKind, ttl time.Duration) error
	IsDismissed(ctx context.Context, userID int64, kind AlertKind) (bool, error)
}

// ServiceConfig groups alert settings.
type ServiceConfig struct {
	ExpiryWindowDays int
	DismissTTL       time.Duration
}

// Service builds dashboard alert widgets.
type Service struct {
	repo       RepositoryPort
	dismissals DismissalPort
	cfg        ServiceConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, dismissals DismissalPort, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.ExpiryWindowDays <= 0 {
		cfg.ExpiryWindowDays = 30
	}
	if cfg.DismissTTL <= 0 {
		cfg.DismissTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, dismissals: dismissals, cfg: cfg, logger: logger, now: time.Now}
}

// Widget is the payload of one alert widget.
type Widget[T any] struct {
	Kind      AlertKind `json:"kind"`
	Dismissed bool      `json:"dismissed"`
	Entries   []T       `json:"entries"`
}

// ScanSummary counts alerts for the background scan.
type ScanSummary struct {
	OutOfStock int
	Critical   int
	Warning    int
	Expired    int
	Expiring   int
	BadDates   int
}

// StockAlerts returns the low stock widget for userID.
func (s *Service) StockAlerts(ctx context.Context, userID int64) (Widget[StockAlertEntry], error) {
	widget := Widget[StockAlertEntry]{Kind: AlertKindStock, Entries: []StockAlertEntry{}}
	if dismissed, err := s.isDismissed(ctx, userID, AlertKindStock); err != nil || dismissed {
		widget.Dismissed = dismissed
		return widget, err
	}
	candidates, err := s.repo.StockCandidates(ctx)
	if err != nil {
		return widget, err
	}
	widget.Entries = BuildStockAlerts(candidates)
	return widget, nil
}

// ExpiryAlerts returns the expiring products widget for userID.
func (s *Service) ExpiryAlerts(ctx context.Context, userID int64) (Widget[ExpiryAlertEntry], error) {
	widget := Widget[ExpiryAlertEntry]{Kind: AlertKindExpiry, Entries: []ExpiryAlertEntry{}}
	if dismissed, err := s.isDismissed(ctx, userID, AlertKindExpiry); err != nil || dismissed {
		widget.Dismissed = dismissed
		return widget, err
	}
	now := s.now()
	candidates, err := s.repo.ExpiryCandidates(ctx, now.AddDate(0, 0, s.cfg.ExpiryWindowDays))
	if err != nil {
		return widget, err
	}
	widget.Entries = BuildExpiryAlerts(candidates, now)
	return widget, nil
}

// Dismiss hides a widget for the configured TTL.
func (s *Service) Dismiss(ctx context.Context, userID int64, kind AlertKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAlertKind, kind)
	}
	return s.dismissals.Dismiss(ctx, userID, kind, s.cfg.DismissTTL)
}

// Scan evaluates every alert regardless of dismissals.
func (s *Service) Scan(ctx context.Context) (ScanSummary, error) {
	var summary ScanSummary
	stock, err := s.repo.StockCandidates(ctx)
	if err != nil {
		return summary, err
	}
	for _, entry := range BuildStockAlerts(stock) {
		switch entry.Status {
		case StockOutOfStock:
			summary.OutOfStock++
		case StockCritical:
			summary.Critical++
		case StockWarning:
			summary.Warning++
		}
	}
	now := s.now()
	expiring, err := s.repo.ExpiryCandidates(ctx, now.AddDate(0, 0, s.cfg.ExpiryWindowDays))
	if err != nil {
		return summary, err
	}
	for _, entry := range BuildExpiryAlerts(expiring, now) {
		switch {
		case entry.DaysRemaining == nil:
			summary.BadDates++
		case *entry.DaysRemaining <= 0:
			summary.Expired++
		default:
			summary.Expiring++
		}
	}
	return summary, nil
}

func (s *Service) isDismissed(ctx context.Context, userID int64, kind AlertKind) (bool, error) {
	if s.dismissals == nil {
		return false, nil
	}
	dismissed, err := s.dismissals.IsDismissed(ctx, userID, kind)
	if err != nil {
		// a broken dismissal store should not hide alerts
		s.logger.Warn("read alert dismissal", slog.String("kind", string(kind)), slog.Any("error", err))
		return false, nil
	}
	return dismissed, nil
}

// BuildStockAlerts keeps candidates whose status needs attention.
func BuildStockAlerts(candidates []Candidate) []StockAlertEntry {
	out := make([]StockAlertEntry, 0, len(candidates))
	for _, c := range candidates {
		status := ClassifyStock(c.Stock, c.MinStock)
		if !status.NeedsAttention() {
			continue
		}
		out = append(out, StockAlertEntry{
			ProductID: c.ProductID,
			Name:      c.Name,
			Stock:     c.Stock,
			MinStock:  c.MinStock,
			Status:    status,
		})
	}
	return out
}

// BuildExpiryAlerts computes days remaining and the alert urgency for each candidate.
// Rows with unparseable dates are kept with a nil day count and the "—" label.
func BuildExpiryAlerts(candidates []Candidate, now time.Time) []ExpiryAlertEntry {
	out := make([]ExpiryAlertEntry, 0, len(candidates))
	for _, c := range candidates {
		entry := ExpiryAlertEntry{
			ProductID:  c.ProductID,
			Name:       c.Name,
			ExpiryDate: c.ExpiryDate,
			Stock:      c.Stock,
		}
		days, err := DaysRemainingFrom(c.ExpiryDate, now)
		entry.DaysLabel = FormatDays(days, err)
		if err != nil {
			entry.Urgency = AlertUnknown
		} else {
			entry.DaysRemaining = &days
			entry.Urgency = AlertUrgencyOf(days)
		}
		out = append(out, entry)
	}
	return out
}
