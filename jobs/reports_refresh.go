package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/minimarket/minimarket/internal/jobs"
)

// CacheBumper invalidates every cached report.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// ReportsRefreshJob bumps the report cache version so date-sensitive reports are rebuilt.
type ReportsRefreshJob struct {
	Cache   CacheBumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsRefreshJob initialises the refresh handler.
func NewReportsRefreshJob(cache CacheBumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsRefreshJob {
	return &ReportsRefreshJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle bumps the cache version.
func (j *ReportsRefreshJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Cache == nil {
		return errors.New("reports refresh: handler not configured")
	}
	var payload ReportsRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track(TaskReportsRefresh)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := j.Cache.Bump(ctx); err != nil {
		logger.Error("reports refresh failed", slog.Any("error", err))
		return err
	}
	logger.Info("report cache invalidated", slog.String("reason", payload.Reason))
	return nil
}
