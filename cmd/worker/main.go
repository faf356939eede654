package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/catalog"
	"github.com/benvon/toolhub/internal/config"
	"github.com/benvon/toolhub/internal/database"
	"github.com/benvon/toolhub/internal/logger"
	"github.com/benvon/toolhub/internal/queue"
	"github.com/benvon/toolhub/internal/telemetry"
	"github.com/benvon/toolhub/internal/workers"
)

var version = "dev"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	if !cfg.EventsEnabled() {
		zapLogger.Fatal("rabbitmq_url_required_for_worker")
	}

	zapLogger.Info("starting_worker",
		zap.String("version", version),
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, "toolhub-worker", cfg.OTELEndpoint, version)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	db, err := database.New(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database", zap.String("driver", db.Dialect()))

	tools, err := catalog.FromPath(cfg.CatalogPath)
	if err != nil {
		zapLogger.Fatal("failed_to_load_catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}

	eventQueue, err := queue.Connect(ctx, cfg.RabbitMQURL, queue.DefaultConnectAttempts, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := eventQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	aggregator := workers.NewUsageAggregator(database.NewToolUsageRepository(db), tools, zapLogger)

	msgChan, errChan, err := eventQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}
	zapLogger.Info("worker_started", zap.String("queue", queue.DefaultQueueName))

	aggregator.Run(ctx, msgChan, errChan)

	zapLogger.Info("worker_stopped")
}
