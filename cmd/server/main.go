package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/kyawhla-commit/prodplan/internal/config"
	"github.com/kyawhla-commit/prodplan/internal/domain/materials"
	"github.com/kyawhla-commit/prodplan/internal/domain/products"
	"github.com/kyawhla-commit/prodplan/internal/infra/db"
	httpx "github.com/kyawhla-commit/prodplan/internal/infra/http"
	"github.com/kyawhla-commit/prodplan/internal/infra/logger"
	"github.com/kyawhla-commit/prodplan/internal/notify"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	if cfg.Notify.LowStock && cfg.Telegram.Token != "" {
		notifier, err := notify.New(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log,
			products.NewRepo(pool), materials.NewRepo(pool))
		if err != nil {
			log.Error("telegram init failed", "err", err)
		} else {
			go runLowStockWatcher(ctx, log, notifier)
		}
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}

// runLowStockWatcher раз в 10 минут проверяет остатки и шлёт сводку.
func runLowStockWatcher(ctx context.Context, log *slog.Logger, n *notify.Notifier) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	n.CheckLowStock(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.CheckLowStock(ctx)
		}
	}
}
