package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pennywise/internal/cache"
	"pennywise/internal/config"
	"pennywise/internal/currency"
	"pennywise/internal/database"
	"pennywise/internal/events"
	"pennywise/internal/knowledge"
	"pennywise/internal/logger"
	"pennywise/internal/server"
	"pennywise/internal/validator"
)

// @title           Pennywise API
// @version         1.0
// @description     Pennywise tracks spending across currencies against budgets, with recurring transactions and a monthly overview.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	ctx := context.Background()

	// Shared currency list cache; Redis is optional
	codeCache, err := cache.Connect(ctx, appConfig.RedisAddress, appConfig.RedisPassword)
	if err != nil {
		log.Warnw("redis unavailable, currency lists will not be shared", "error", err)
		codeCache = cache.New(nil)
	}
	defer func() { _ = codeCache.Close() }()

	httpClient := &http.Client{Timeout: appConfig.RateAPITimeout}

	var rates currency.RateSource
	if appConfig.ExchangeRateAPIKey != "" {
		rates = currency.NewExchangeRateClient(httpClient, appConfig.ExchangeRateBaseURL, appConfig.ExchangeRateAPIKey)
	} else {
		log.Warn("EXCHANGE_RATE_API_KEY not set, using static conversion rates")
	}
	converter := currency.NewConverter(appConfig.CanonicalCurrency, rates,
		currency.WithCodeCache(codeCache),
		currency.WithCodesTTL(appConfig.CurrencyListTTL),
	)

	// Domain events; AMQP is optional
	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange)
		if err != nil {
			log.Warnw("event publishing disabled", "error", err)
		} else {
			publisher = amqpPublisher
		}
	}
	defer func() { _ = publisher.Close() }()

	knowledgeClient := knowledge.NewClient(httpClient, appConfig.WolframBaseURL, appConfig.WolframAppID)
	if !knowledgeClient.Configured() {
		log.Info("WOLFRAM_APP_ID not set, knowledge endpoints disabled")
	}

	router := server.NewRouter(server.Deps{
		DB:        dbManager.DB(),
		Currency:  converter,
		Knowledge: knowledgeClient,
		Publisher: publisher,

		AllowedOrigins: appConfig.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Starting Pennywise server", "port", appConfig.Port, "canonical_currency", converter.Canonical())
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Infow("Shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server stopped gracefully")
	return nil
}
