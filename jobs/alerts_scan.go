package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/minimarket/minimarket/internal/inventory"
	jobmetrics "github.com/minimarket/minimarket/internal/jobs"
)

// AlertScanner computes the current alert summary.
type AlertScanner interface {
	Scan(ctx context.Context) (inventory.ScanSummary, error)
}

// AlertsScanJob logs how many products need attention.
type AlertsScanJob struct {
	Scanner AlertScanner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAlertsScanJob initialises the alerts scan handler.
func NewAlertsScanJob(scanner AlertScanner, logger *slog.Logger, metrics *jobmetrics.Metrics) *AlertsScanJob {
	return &AlertsScanJob{Scanner: scanner, Logger: logger, Metrics: metrics}
}

// Handle executes the scan.
func (j *AlertsScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Scanner == nil {
		return errors.New("alerts scan: handler not configured")
	}
	var payload AlertsScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := time.Now()
	tracker := j.Metrics.Track(TaskAlertsScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	summary, err := j.Scanner.Scan(ctx)
	if err != nil {
		logger.Error("alerts scan failed", slog.Any("error", err))
		return err
	}

	j.Metrics.SetAlerts("stock", summary.OutOfStock+summary.Critical+summary.Warning)
	j.Metrics.SetAlerts("expiry", summary.Expired+summary.Expiring)
	if summary.BadDates > 0 {
		logger.Warn("products with unreadable expiry dates", slog.Int("count", summary.BadDates))
	}
	logger.Info("completed alerts scan",
		slog.Int("out_of_stock", summary.OutOfStock),
		slog.Int("critical", summary.Critical),
		slog.Int("warning", summary.Warning),
		slog.Int("expired", summary.Expired),
		slog.Int("expiring", summary.Expiring),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *AlertsScanJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
