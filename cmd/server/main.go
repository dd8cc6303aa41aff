package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/bakeops/backledger/internal/adapter/http"
	"github.com/bakeops/backledger/internal/adapter/http/handler"
	postgresRepo "github.com/bakeops/backledger/internal/adapter/repository/postgres"
	redisRepo "github.com/bakeops/backledger/internal/adapter/repository/redis"
	"github.com/bakeops/backledger/internal/infrastructure/config"
	"github.com/bakeops/backledger/internal/infrastructure/logger"
	"github.com/bakeops/backledger/internal/infrastructure/postgres"
	"github.com/bakeops/backledger/internal/infrastructure/redis"
	"github.com/bakeops/backledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Run pending migrations before accepting traffic
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	entityRepo := postgresRepo.NewEntityRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Redis is optional. Without it the service still serves every
	// endpoint; summary caching and idempotent replays are disabled.
	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
	)
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching and idempotency disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		log.Info().Msg("connected to redis")
	}

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, entityRepo, txRepo, idGen, cache, retrier)
	entityUC := usecase.NewEntityUseCase(txManager, entityRepo, txRepo, cache)
	supplierUC := usecase.NewSupplierUseCase(entityRepo, txRepo)
	statementUC := usecase.NewStatementUseCase(ledgerUC, supplierUC)

	// Initialize handlers
	entityHandler := handler.NewEntityHandler(entityUC)
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	statementHandler := handler.NewStatementHandler(statementUC)
	supplierHandler := handler.NewSupplierHandler(supplierUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EntityHandler:    entityHandler,
		LedgerHandler:    ledgerHandler,
		StatementHandler: statementHandler,
		SupplierHandler:  supplierHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
