package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"libraryhub/database"
	"libraryhub/internal/config"
	"libraryhub/internal/http-api/handler"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"
	"libraryhub/internal/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	store, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("database_connect_failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := database.Migrate(ctx, store.Gorm, logger); err != nil {
		logger.Error("database_migrate_failed", "error", err)
		os.Exit(1)
	}

	rdb, err := database.ConnectRedis(ctx, cfg, logger)
	if err != nil {
		logger.Error("redis_connect_failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Repositories
	users := repository.NewUserRepository(store.Gorm)
	books := repository.NewBookRepository(store.Gorm)
	ledger := repository.NewCirculationRepository(store.Gorm)
	reports := repository.NewReportRepository(store.X)
	cache := repository.NewCatalogCache(rdb, cfg.CacheTTLDuration(), logger)
	revoked := repository.NewTokenRevocations(rdb)

	// Services
	authService, err := service.NewAuthService(users, revoked, service.AuthConfigFrom(cfg), logger)
	if err != nil {
		logger.Error("auth_service_init_failed", "error", err)
		os.Exit(1)
	}
	circCfg := service.CirculationConfigFrom(cfg)

	router := handler.NewRouter(handler.RouterDeps{
		Auth:          authService,
		Catalog:       service.NewCatalogService(books, cache, cfg.StoreTimeout, logger),
		Circulation:   service.NewCirculationService(ledger, cache, circCfg, logger),
		Reports:       service.NewReportService(reports, circCfg),
		DB:            store.SQL,
		Logger:        logger,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
		AuthRateBurst: cfg.AuthRateBurst,
		StoreTimeout:  cfg.StoreTimeout,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: router,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting_api_server", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("received_shutdown_signal")
	case err := <-errChan:
		logger.Error("server_error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
		return
	}
	logger.Info("server_stopped_gracefully")
}
