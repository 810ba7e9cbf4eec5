package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/minimarket/minimarket/internal/app"
	"github.com/minimarket/minimarket/internal/inventory"
	jobmetrics "github.com/minimarket/minimarket/internal/jobs"
	"github.com/minimarket/minimarket/internal/platform/cache"
	"github.com/minimarket/minimarket/internal/platform/db"
	"github.com/minimarket/minimarket/internal/reports"
	"github.com/minimarket/minimarket/jobs"
)

const (
	alertsScanSpec     = "0 * * * *"
	reportsRefreshSpec = "5 0 * * *"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	alertService := inventory.NewService(inventory.NewRepository(pool), inventory.NewDismissalStore(redisClient), inventory.ServiceConfig{
		ExpiryWindowDays: cfg.ExpiryWindowDays,
		DismissTTL:       cfg.AlertDismissTTL,
	}, logger)
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	alertsJob := jobs.NewAlertsScanJob(alertService, logger, metrics)
	refreshJob := jobs.NewReportsRefreshJob(reportCache, logger, metrics)

	alertsTask, err := jobs.NewAlertsScanTask()
	if err != nil {
		logger.Error("build alerts task", slog.Any("error", err))
		os.Exit(1)
	}
	refreshTask, err := jobs.NewReportsRefreshTask("nightly")
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAlertsScan, Handler: alertsJob.Handle},
			{Type: jobs.TaskReportsRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: alertsScanSpec, Task: alertsTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: reportsRefreshSpec, Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("alerts_scan", alertsScanSpec), slog.String("reports_refresh", reportsRefreshSpec))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
