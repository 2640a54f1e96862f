package main

import (
	"context"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cli"
	applog "financas/internal/log"
	"financas/internal/services"
	gsheet "financas/internal/sheets/google"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting financas-worker")

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required by the export worker")
		os.Exit(1)
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is private to this process, nothing written by the server will be exported")
	}

	var amqpClient *amqp.Client
	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(context.Context) {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", applog.FieldError, err)
			}
		}
	})

	backend := cli.InitStore(ctx, logger, cfg)
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err)
		}
	}()

	exporter, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		SheetName:     cfg.GoogleSheetName,
		Location:      cfg.Location(),
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	processor := services.NewExportProcessor(backend.Store, exporter, services.ExportProcessorConfig{
		PollInterval: cfg.ExportInterval,
		BatchSize:    cfg.ExportBatchSize,
	}, logger)

	var consumer worker.LedgerConsumer
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPReminderQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		consumer = amqpClient
	} else {
		logger.Info("AMQP disabled, relying on the periodic pending scan")
	}

	w := worker.NewExportWorker(processor, consumer, logger)
	if err := w.Run(ctx); err != nil {
		logger.Error("Export worker stopped", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("financas-worker stopped")
}
