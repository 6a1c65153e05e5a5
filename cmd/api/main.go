package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pawlink/pawlink-backend/internal/api"
	"github.com/pawlink/pawlink-backend/internal/auth"
	"github.com/pawlink/pawlink-backend/internal/config"
	"github.com/pawlink/pawlink-backend/internal/db"
	"github.com/pawlink/pawlink-backend/internal/logger"
	"github.com/pawlink/pawlink-backend/internal/metrics"
	"github.com/pawlink/pawlink-backend/internal/repository/postgres"
	"github.com/pawlink/pawlink-backend/internal/services"
	"github.com/pawlink/pawlink-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	if cfg.PaystackSecret == "" {
		log.Warn("PAYSTACK_SECRET_KEY not set; webhook verification will report a configuration error")
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, 15*time.Minute, 7*24*time.Hour)
	userSvc := services.NewUserService(repos.Users)
	ledgerSvc := services.NewLedgerService(repos.Transactions, repos.Applications, repos.AuditLogs, wp)

	metrics.Init()
	r := api.NewRouter(cfg, log, tm, userSvc, ledgerSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
