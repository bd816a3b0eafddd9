package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/backend"
	"dompet/internal/cli"
	apphttp "dompet/internal/http"
	"dompet/internal/log"
	"dompet/internal/middleware/ratelimit"
	"dompet/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	logger := cli.SetupLogger(cfg, log.ComponentApp)
	defer logger.Close()

	ctx := context.Background()
	factory := backend.NewFactory(logger)

	storeCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error_type", log.ErrorTypeConfiguration, log.FieldError, err)
		os.Exit(1)
	}
	stores, err := factory.CreateBackend(ctx, storeCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	cacheCfg, err := backend.CacheFromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid cache configuration", "error_type", log.ErrorTypeConfiguration, log.FieldError, err)
		os.Exit(1)
	}
	caches, err := factory.CreateCache(ctx, cacheCfg)
	if err != nil {
		logger.Error("Failed to initialize cache", log.FieldError, err, "cache", cfg.CacheBackend)
		os.Exit(1)
	}

	// Publishing is optional; a nil interface disables it.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange)
		}
	}

	ledger := services.NewLedgerService(stores.Store, caches.Cache, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, apphttp.Options{
		Logger: logger,
		Auth:   apphttp.NewAuthenticator(cfg.AuthJWTSecret),
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		Ready: stores.Ready,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			amqpClient.Close()
		}
		if err := caches.Cleanup(); err != nil {
			logger.Warn("Cache cleanup error", log.FieldError, err)
		}
		if err := stores.Cleanup(); err != nil {
			logger.Warn("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting dompet server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"cache", cfg.CacheBackend,
		"jwt_auth", cfg.AuthJWTSecret != "",
		"amqp_enabled", publisher != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
