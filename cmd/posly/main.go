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

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/adjustments"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/app"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/finance"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/observability"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/platform/cache"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/platform/db"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/products"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/purchases"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/quotations"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/sales"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/shared"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/warehouses"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/jobs"
)

func main() {
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
		logger.Warn("redis unavailable, lookup cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	idempotency := shared.NewIdempotencyStore(pool)

	productRepo := products.NewRepository(pool)
	productCache := products.NewCache(redisClient, cfg.SearchCacheTTL)
	productService := products.NewService(productRepo, productCache, logger)
	productLookup := products.NewLookup(productRepo, productCache, cfg.SearchDebounce)

	warehouseService := warehouses.NewService(warehouses.NewRepository(pool))

	adjustmentService := adjustments.NewService(
		adjustments.NewRepository(pool),
		logger,
		adjustments.WithIdempotency(idempotency),
		adjustments.WithAudit(auditLogger),
		adjustments.WithCacheBumper(productCache),
		adjustments.WithStopOnError(cfg.AdjustmentStopOnError),
	)

	purchaseService := purchases.NewService(pool, logger)
	saleService := sales.NewService(pool, logger)
	quotationService := quotations.NewService(pool, logger)
	financeService := finance.NewService(finance.NewRepository(pool))

	var jobsHandler *jobs.Handler
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobsClient, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Error("init jobs client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		jobsHandler = jobs.NewHandler(inspector, jobsClient, logger)
	}

	router := app.NewRouter(app.RouterConfig{
		Middleware: app.MiddlewareConfig{
			Logger:  logger,
			Config:  cfg,
			Metrics: metrics,
		},
		Metrics:     metrics,
		Products:    products.NewHandler(logger, productService, productLookup),
		Warehouses:  warehouses.NewHandler(logger, warehouseService),
		Adjustments: adjustments.NewHandler(logger, adjustmentService),
		Purchases:   purchases.NewHandler(logger, purchaseService),
		Sales:       sales.NewHandler(logger, saleService),
		Quotations:  quotations.NewHandler(logger, quotationService),
		Finance:     finance.NewHandler(logger, financeService),
		Jobs:        jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
