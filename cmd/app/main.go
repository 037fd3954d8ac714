// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"premium-unlock/internal/config"
	pg "premium-unlock/internal/infra/db/postgres"
	"premium-unlock/internal/infra/logging"
	"premium-unlock/internal/infra/metrics"
	red "premium-unlock/internal/infra/redis"
	"premium-unlock/internal/infra/sched"
	"premium-unlock/internal/infra/web"
	"premium-unlock/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed validation, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis (optional; rate limiting only) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; public API rate limiting disabled")
	}

	// ---- Repositories ----
	codeRepo := pg.NewUnlockCodeRepo(pool)
	tokenRepo := pg.NewPremiumTokenRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Use cases ----
	codeUC := usecase.NewCodeUseCase(codeRepo, txManager, logger)
	redeemUC := usecase.NewRedeemUseCase(codeRepo, tokenRepo, logger)
	tokenUC := usecase.NewTokenUseCase(tokenRepo, logger)
	statsUC := usecase.NewStatsUseCase(codeRepo, tokenRepo)

	// ---- HTTP: public API ----
	pubSrv := web.NewServer(redeemUC, tokenUC, limiter, cfg.API, logger)
	public := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: pubSrv.Router(),
	}
	go func() {
		logger.Info().Str("addr", public.Addr).Msg("public api listening")
		if err := public.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("public api server error")
		}
	}()

	// ---- HTTP: admin API ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, "", cfg.Admin.SessionTTL)
	admSrv := web.NewAdminServer(codeUC, statsUC, auth, cfg.Admin.Password, logger)
	admin := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: admSrv.Router(),
	}
	go func() {
		logger.Info().Str("addr", admin.Addr).Msg("admin api listening")
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin api server error")
		}
	}()

	// ---- Expiry gauge worker ----
	worker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryGaugeEvery, codeRepo, tokenRepo, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = public.Shutdown(shutdownCtx)
	_ = admin.Shutdown(shutdownCtx)
}
