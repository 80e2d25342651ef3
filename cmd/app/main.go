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

	"digital-menu-platform/internal/config"
	"digital-menu-platform/internal/infra/api"
	pg "digital-menu-platform/internal/infra/db/postgres"
	"digital-menu-platform/internal/infra/logging"
	"digital-menu-platform/internal/infra/metrics"
	red "digital-menu-platform/internal/infra/redis"
	"digital-menu-platform/internal/infra/sched"
	"digital-menu-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	themes := red.NewThemeBroadcast(redisClient, logger)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	menuRepo := pg.NewMenuRepoCacheDecorator(pg.NewMenuRepo(pool), redisClient, cfg.Redis.TTL, logger)
	itemRepo := pg.NewMenuItemRepo(pool)
	categoryRepo := pg.NewCategoryRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	tm := pg.NewTxManager(pool)

	// ---- Use cases ----
	menuUC := usecase.NewMenuUseCase(menuRepo, itemRepo, userRepo, tm, logger)
	itemUC := usecase.NewItemUseCase(menuRepo, itemRepo, categoryRepo, tm, logger)
	couponUC := usecase.NewCouponUseCase(couponRepo, userRepo, tm, logger)
	claimUC := usecase.NewClaimUseCase(menuRepo, userRepo, couponRepo, tm, logger)
	devUC := usecase.NewDeveloperUseCase(userRepo, menuRepo, itemRepo, tm, logger)

	// ---- HTTP server ----
	srv := api.NewServer(menuUC, itemUC, couponUC, claimUC, devUC, themes, rateLimiter, api.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		RequestTimeout: cfg.Server.Timeout,
		ClaimPerMinute: cfg.RateLimit.ClaimPerMinute,
	}, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Expiry worker ----
	worker := sched.NewExpiryWorker(cfg.Worker.ExpiryInterval, userRepo, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
