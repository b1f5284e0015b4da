package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mohamad548/bilalhabashi/internal/config"
	"github.com/Mohamad548/bilalhabashi/internal/domain"
	"github.com/Mohamad548/bilalhabashi/internal/handler"
	"github.com/Mohamad548/bilalhabashi/internal/infra/cache"
	"github.com/Mohamad548/bilalhabashi/internal/infra/datastore"
	"github.com/Mohamad548/bilalhabashi/internal/infra/observability"
	"github.com/Mohamad548/bilalhabashi/internal/infra/resilience"
	"github.com/Mohamad548/bilalhabashi/internal/infra/telegram"
	"github.com/Mohamad548/bilalhabashi/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store_url", cfg.StoreURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "fund-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	memberCache := cache.New[[]domain.Member](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	storeCB := resilience.NewCircuitBreaker("datastore")
	telegramCB := resilience.NewCircuitBreaker("telegram")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := datastore.NewClient(httpClient, cfg.StoreURL, cfg.StoreToken, storeCB, resilienceCfg, metrics, logger)
	notifier := telegram.NewClient(httpClient, cfg.TelegramAPIURL, cfg.TelegramBotToken, telegramCB, resilienceCfg, logger)

	// --- Services ---
	ledgerSvc := service.NewLedgerService(store, metrics, logger)
	svcs := handler.Services{
		Ledger:   ledgerSvc,
		Loans:    service.NewLoanService(store, metrics, logger),
		Members:  service.NewMemberService(store, memberCache, metrics, logger),
		Fund:     service.NewFundService(store, metrics, logger),
		Requests: service.NewRequestService(store, notifier, metrics, logger),
		Receipts: service.NewReceiptService(store, ledgerSvc, notifier, metrics, logger),
		Auth:     service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, logger),
	}

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
