package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/cli"
	apphttp "financas/internal/http"
	applog "financas/internal/log"
	"financas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel)
	ctx := context.Background()

	backend := cli.InitStore(ctx, logger, cfg)
	loc := cfg.Location()

	statsCache := cache.NewLRUCache[any](1000, cfg.StatsCacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(statsCache)
	cacheManager.StartCleanup(time.Minute)

	stats := services.NewStatisticsService(backend.Store, statsCache, services.StatisticsConfig{
		NetWorthDefaultDays: cfg.NetWorthDefaultDays,
		NetWorthMaxDays:     cfg.NetWorthMaxDays,
		Location:            loc,
	}, logger)

	opts := []services.FinanceOption{
		services.WithInvalidator(stats),
		services.WithLocation(loc),
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPReminderQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without ledger events", applog.FieldError, err)
		} else {
			amqpClient = c
			opts = append(opts, services.WithPublisher(amqpClient))
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	finance := services.NewFinanceService(backend.Store, logger, opts...)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		DefaultUserID:  cfg.DefaultUserID,
		TrustedProxies: cfg.TrustedProxies,
	}, finance, stats, backend.Store, logger)
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", applog.FieldError, err)
			}
		}
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err)
		}
	})

	logger.Info("Starting financas server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", loc.String(),
		"amqp_enabled", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
