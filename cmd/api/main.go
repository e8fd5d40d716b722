package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"palma-lending/config"
	"palma-lending/internal/adapter/custody"
	"palma-lending/internal/adapter/events"
	httpHandler "palma-lending/internal/adapter/http/handler"
	"palma-lending/internal/adapter/metrics"
	pgStorage "palma-lending/internal/adapter/storage/postgres"
	redisStorage "palma-lending/internal/adapter/storage/redis"
	"palma-lending/internal/core/ports"
	"palma-lending/internal/ledger"
	"palma-lending/internal/service"
	"palma-lending/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("PLM_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Int("tokens", len(cfg.Tokens)).
		Msg("Starting Palma Lending")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret must be set (PLM_JWT_SECRET)")
	}
	params, err := cfg.Risk.Params()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid risk configuration")
	}

	ctx := context.Background()

	// PostgreSQL: event journal
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare schema")
	}

	// Redis: oracle rounds, rate limits, idempotency
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	m, err := metrics.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// Collaborators
	poolAccount := cfg.Pool.Account()
	vault := custody.NewVault(poolAccount, logger.Component(log, "custody"))
	registry := service.NewTokenRegistry(vault, logger.Component(log, "registry"))
	oracle := service.NewFeedOracle(logger.Component(log, "oracle"))
	rounds := redisStorage.NewRoundStore(rdb)

	if err := setupTokens(ctx, cfg.Tokens, rounds, vault, registry, oracle, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tokens")
	}
	if err := mintGenesis(vault, cfg.Custody.Genesis); err != nil {
		log.Fatal().Err(err).Msg("Failed to mint genesis balances")
	}

	// Event fan-out
	journal := pgStorage.NewEventJournal(pool)
	bus := events.NewBus().
		Subscribe("log", events.LogListener(logger.Component(log, "events"))).
		Subscribe("journal", events.JournalListener(journal)).
		Subscribe("metrics", m.EventListener())
	if cfg.Kafka.Enabled() {
		kafkaPub := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger.Component(log, "kafka")))
		defer kafkaPub.Close()
		bus.Subscribe("kafka", kafkaPub.Listener())
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publishing enabled")
	}

	// Core services
	health := service.NewHealthCalculator(oracle, registry, params)
	liquidation := service.NewLiquidationEngine(health, oracle, registry, params)
	lending := service.NewLendingService(
		ledger.NewBook(),
		registry,
		health,
		liquidation,
		vault,
		bus,
		poolAccount,
		params,
		logger.Component(log, "ledger"),
	)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Lending:        lending,
		Journal:        journal,
		TokenSvc:       tokenSvc,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		Idempotency:    redisStorage.NewIdempotencyCache(rdb),
		Metrics:        m,
		HealthCheckers: []ports.HealthChecker{
			pgStorage.NewHealthCheck(pool),
			redisStorage.NewHealthCheck(rdb),
		},
		Logger: logger.Component(log, "http"),
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
