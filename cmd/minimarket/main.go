package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/minimarket/minimarket/cmd/minimarket/cli"
	"github.com/minimarket/minimarket/internal/app"
	"github.com/minimarket/minimarket/internal/auth"
	"github.com/minimarket/minimarket/internal/drafts"
	"github.com/minimarket/minimarket/internal/inventory"
	"github.com/minimarket/minimarket/internal/masterdata"
	"github.com/minimarket/minimarket/internal/masterdata/categories"
	"github.com/minimarket/minimarket/internal/masterdata/customers"
	"github.com/minimarket/minimarket/internal/masterdata/products"
	"github.com/minimarket/minimarket/internal/observability"
	"github.com/minimarket/minimarket/internal/platform/cache"
	"github.com/minimarket/minimarket/internal/platform/db"
	"github.com/minimarket/minimarket/internal/procurement"
	"github.com/minimarket/minimarket/internal/rbac"
	"github.com/minimarket/minimarket/internal/reports"
	"github.com/minimarket/minimarket/internal/reports/export"
	"github.com/minimarket/minimarket/internal/sales"
	"github.com/minimarket/minimarket/internal/users"
	"github.com/minimarket/minimarket/jobs"
	"github.com/minimarket/minimarket/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
		code := cli.RunJobs(ctx, jobsCLI, os.Args[2:], os.Stdout, os.Stderr)
		_ = jobsCLI.Close()
		os.Exit(code)
	}

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

	metrics := observability.NewMetrics()
	rbacMiddleware := rbac.Middleware{Logger: logger}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}
	usersService := users.NewService(users.NewRepository(pool))
	authService := auth.NewService(usersService, tokens)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	categoryService := categories.NewService(categories.NewRepository(pool))
	productService := products.NewService(products.NewRepository(pool))
	customerService := customers.NewService(customers.NewRepository(pool))

	procurementService := procurement.NewService(procurement.NewRepository(pool), reportCache, logger)
	salesService := sales.NewService(sales.NewRepository(pool), reportCache, logger)

	draftService := drafts.NewService(drafts.NewStore(redisClient), productService, procurementService, salesService, metrics, cfg.DraftTTL, logger)

	alertService := inventory.NewService(inventory.NewRepository(pool), inventory.NewDismissalStore(redisClient), inventory.ServiceConfig{
		ExpiryWindowDays: cfg.ExpiryWindowDays,
		DismissTTL:       cfg.AlertDismissTTL,
	}, logger)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	reportService := reports.NewService(reports.NewRepository(pool), reportCache, reports.ServiceConfig{
		ExpiryWindowDays: cfg.ExpiryWindowDays,
	}, logger)
	sinks := export.NewSinks(pdfClient, export.Options{ThemeColor: cfg.ExportThemeColor, Locale: cfg.ExportLocale})

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		_ = inspector.Close()
	}()

	health := app.HealthCheck{
		Checks: map[string]app.Pinger{
			"postgres":  app.PingFunc(pool.Ping),
			"redis":     app.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
			"gotenberg": pdfClient,
		},
		Optional: map[string]bool{"gotenberg": true},
	}

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Tokens:  tokens,
		RBAC:    rbacMiddleware,
		Metrics: metrics,
		Health:  health,

		AuthHandler:  auth.NewHandler(logger, authService, tokens, app.LoginLimiter(cfg.LoginRatePerMinute)),
		UsersHandler: users.NewHandler(logger, usersService, rbacMiddleware),

		MasterData: masterdata.Handlers{
			Categories: categories.NewHandler(logger, categoryService, rbacMiddleware),
			Products:   products.NewHandler(logger, productService, rbacMiddleware),
			Customers:  customers.NewHandler(logger, customerService, rbacMiddleware),
		},

		ProcurementHandler: procurement.NewHandler(logger, procurementService, rbacMiddleware),
		SalesHandler:       sales.NewHandler(logger, salesService, rbacMiddleware),
		DraftsHandler:      drafts.NewHandler(logger, draftService),
		AlertsHandler:      inventory.NewHandler(logger, alertService),
		ReportsHandler:     reports.NewHandler(logger, reportService, sinks),
		JobHandler:         jobs.NewHandler(inspector, jobClient, logger),
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
