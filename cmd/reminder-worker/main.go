package main

import (
	"context"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cli"
	applog "financas/internal/log"
	"financas/internal/services"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting reminder-worker", "interval", cfg.ReminderInterval)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the reminder worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPReminderQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", applog.FieldError, err)
		}
	})

	backend := cli.InitStore(ctx, logger, cfg)
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err)
		}
	}()

	processor := services.NewReminderProcessor(backend.Store, amqpClient, cfg.Location(), logger)
	w := worker.NewReminderWorker(processor, cfg.ReminderInterval, logger)
	if err := w.Run(ctx); err != nil {
		logger.Error("Reminder worker stopped", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("reminder-worker stopped")
}
