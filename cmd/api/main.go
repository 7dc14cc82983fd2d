package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ticketforge/ticketing/internal/di"
	"github.com/ticketforge/ticketing/internal/metrics"
	"github.com/ticketforge/ticketing/migrations"
	"github.com/ticketforge/ticketing/pkg/config"
	"github.com/ticketforge/ticketing/pkg/database"
	"github.com/ticketforge/ticketing/pkg/logger"
	"github.com/ticketforge/ticketing/pkg/middleware"
	pkgredis "github.com/ticketforge/ticketing/pkg/redis"
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
		ServiceName: "ticketing-api",
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Ticketing API...")

	ctx := context.Background()

	// Initialize tracing and metrics
	telCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Tracing init failed, continuing without: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Error(fmt.Sprintf("Tracing shutdown failed: %v", err))
		}
	}()

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

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Apply pending migrations
	if err := migrations.Apply(ctx, db.Pool()); err != nil {
		appLog.Fatal(fmt.Sprintf("Migrations failed: %v", err))
	}

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		// Availability counts fall back to the database
		appLog.Warn(fmt.Sprintf("Redis connection failed, running without cache: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (pool: %d, minIdle: %d)", redisCfg.PoolSize, redisCfg.MinIdleConns))
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:    db,
		Redis: redisClient,
	})

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DisableConsoleColor()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	router.Use(metrics.GinMiddleware())

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events")
		{
			events.POST("", container.EventHandler.CreateEvent)
			events.GET("", container.EventHandler.ListEvents)
			events.GET("/:id", container.EventHandler.GetEvent)
			events.POST("/:id/ticket-types", container.EventHandler.CreateTicketType)
			events.GET("/:id/summary", container.EventHandler.GetSummary)
		}

		orders := v1.Group("/orders")
		orders.Use(userIDMiddleware())
		{
			// Write operations honor X-Idempotency-Key when Redis is up
			if redisClient != nil {
				idem := middleware.IdempotencyMiddleware(middleware.DefaultIdempotencyConfig(redisClient.Client()))
				orders.POST("", idem, container.OrderHandler.CreateOrder)
				orders.POST("/:id/cancel", idem, container.OrderHandler.CancelOrder)
			} else {
				orders.POST("", container.OrderHandler.CreateOrder)
				orders.POST("/:id/cancel", container.OrderHandler.CancelOrder)
			}
			orders.GET("", container.OrderHandler.GetUserOrders)
			orders.GET("/:id", container.OrderHandler.GetOrder)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Ticketing API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

// userIDMiddleware extracts user_id from the X-User-ID header. Upstream
// auth terminates at the gateway; this service trusts the header.
func userIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}
