package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ticketforge/ticketing/internal/metrics"
	"github.com/ticketforge/ticketing/internal/repository"
	"github.com/ticketforge/ticketing/internal/worker"
	"github.com/ticketforge/ticketing/pkg/config"
	"github.com/ticketforge/ticketing/pkg/database"
	"github.com/ticketforge/ticketing/pkg/kafka"
	"github.com/ticketforge/ticketing/pkg/logger"
	"github.com/ticketforge/ticketing/pkg/retry"
	"github.com/ticketforge/ticketing/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: "outbox-worker",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Outbox Worker...")

	ctx := context.Background()

	// Initialize metrics
	telCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "outbox-worker",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if err := telemetry.InitMetrics(ctx, telCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed, continuing without: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.ShutdownMetrics(shutdownCtx); err != nil {
			appLog.Error(fmt.Sprintf("Metrics shutdown failed: %v", err))
		}
	}()

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to register metrics: %v", err))
	}

	// Initialize database connection. The worker only polls, it needs a
	// small pool.
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Kafka producer
	producerCfg := kafka.DefaultProducerConfig()
	producerCfg.Brokers = cfg.Kafka.Brokers
	producerCfg.ClientID = cfg.Kafka.ClientID
	producer, err := kafka.NewProducer(ctx, producerCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Kafka connection failed: %v", err))
	}
	defer producer.Close()
	appLog.Info(fmt.Sprintf("Kafka producer connected (brokers: %v)", cfg.Kafka.Brokers))

	// Start outbox worker
	workerCfg := worker.DefaultOutboxWorkerConfig()
	workerCfg.PollInterval = cfg.Outbox.PollInterval
	workerCfg.BatchSize = cfg.Outbox.BatchSize
	workerCfg.DLQ = retry.NewKafkaDLQPublisher(producer, "outbox-worker")

	outboxRepo := repository.NewPostgresOutboxRepository(db.Pool())
	w := worker.NewOutboxWorker(outboxRepo, producer, workerCfg)
	if err := w.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start outbox worker: %v", err))
	}
	appLog.Info(fmt.Sprintf("Outbox worker started (poll: %s, batch: %d)", workerCfg.PollInterval, workerCfg.BatchSize))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down outbox worker...")

	w.Stop()
	appLog.Info("Outbox worker exited gracefully")
}
