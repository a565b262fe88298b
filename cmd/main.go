package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lklbridge/internal/bootstrap"
	"lklbridge/internal/config"
	cronpkg "lklbridge/internal/cron"
	"lklbridge/internal/dedup"
	"lklbridge/internal/fulfillment"
	"lklbridge/internal/notifier"
	"lklbridge/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Idempotency store ---
	// Durable gorm store by default; Redis when configured and reachable,
	// otherwise the gorm store stays in place.
	var store dedup.Store
	gormStore := dedup.NewGormStore(db, cfg.Gateway.DedupCapacity)
	store = gormStore
	if cfg.Redis.Addr != "" {
		client, redisErr := dedup.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB)
		if redisErr != nil {
			logger.Warn("Redis unavailable, using database dedupe store", zap.Error(redisErr))
		} else {
			store = dedup.NewRedisStore(client, 0)
		}
	}

	// --- Payment report notifier (optional) ---
	var reporter fulfillment.Notifier
	if tg, tgErr := notifier.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger); tgErr != nil {
		logger.Warn("Telegram notifier disabled", zap.Error(tgErr))
	} else if tg != nil {
		reporter = tg
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Routes ---
	router.Setup(e, db, cfg, store, reporter, logger)

	// --- Retention scheduler ---
	scheduler := cronpkg.New(gormStore, logger)
	scheduler.Start()

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting lklbridge server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron
	ctx := scheduler.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
