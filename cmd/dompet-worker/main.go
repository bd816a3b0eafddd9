package main

import (
	"context"
	"errors"
	"os"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/backend"
	"dompet/internal/cli"
	"dompet/internal/log"
	"dompet/internal/services"
	gsheet "dompet/internal/sheets/google"
	"dompet/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	defer logger.Close()

	logger.Info("Starting dompet-worker", log.FieldOperation, log.OpStartup)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Worker is using the memory backend; it will not see the server's records")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	storeCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error_type", log.ErrorTypeConfiguration, log.FieldError, err)
		os.Exit(1)
	}
	stores, err := backend.NewFactory(logger).CreateBackend(ctx, storeCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer stores.Cleanup()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reminders := services.NewOverdueProcessor(stores.Store, amqpClient, cfg.ReminderInterval)
	if err := reminders.Start(ctx); err != nil {
		logger.Error("Failed to start overdue processor", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Overdue processor started", "interval", cfg.ReminderInterval)

	if cfg.SheetsEnabled() {
		exporter, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleCredentialsFile)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

		exports := worker.NewExportWorker(stores.Store, exporter, logger)
		if err := exports.StartupExport(ctx); err != nil {
			logger.Error("Failed startup export", log.FieldError, err)
		}

		go func() {
			err := amqpClient.ConsumeRecordChanged(ctx, exports.HandleRecordChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
				os.Exit(1)
			}
		}()
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	cli.WaitForShutdown(ctx, done)

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := reminders.Stop(stopCtx); err != nil {
		logger.Warn("Overdue processor stop error", log.FieldError, err)
	}
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}
