// Package main provides the main entry point for the VILLEX lead-capture API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/villex/leads-api/app/handlers"
	"github.com/villex/leads-api/app/router"
	"github.com/villex/leads-api/app/services"
	businessflow "github.com/villex/leads-api/business_flow"
	"github.com/villex/leads-api/config"
	"github.com/villex/leads-api/repository"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting leads API...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Expose Prometheus metrics on a separate listener
	if cfg.Metrics.Enabled {
		stopMetrics := startMetricsServer(cfg.Metrics)
		app.stopFuncs = append(app.stopFuncs, stopMetrics)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the application log through lumberjack when file
// output is configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" {
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
		return
	}

	log.SetOutput(fileWriter)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if cfg.Provider != "redis" {
		return nil, nil
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisAddr, cfg.RedisDB)
	return rc, nil
}

// initializeNotificationService initializes the notification service
func initializeNotificationService(cfg config.EmailConfig) services.NotificationService {
	var emailProvider services.EmailProvider
	if cfg.UseMock {
		emailProvider = services.NewMockEmailProvider()
	} else {
		emailProvider = services.NewSMTPEmailProvider(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.FromEmail, cfg.FromName)
	}

	return services.NewNotificationService(emailProvider)
}

// initializeRateLimiter initializes the submission counter store
func initializeRateLimiter(cfg *config.ProductionConfig, rc *redis.Client) services.RateLimitService {
	if rc != nil {
		return services.NewRedisRateLimitService(rc, cfg.AntiSpam.RateLimitCount, cfg.AntiSpam.RateLimitWindow, cfg.AntiSpam.EmailCooldown)
	}

	log.Println("Redis not configured, using in-memory rate limiter")
	return services.NewMemoryRateLimitService(cfg.AntiSpam.RateLimitCount, cfg.AntiSpam.RateLimitWindow, cfg.AntiSpam.EmailCooldown)
}

// startMetricsServer starts the Prometheus metrics listener. The
// returned function stops it.
func startMetricsServer(cfg config.MetricsConfig) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		log.Printf("Metrics server starting on :%d%s", cfg.Port, cfg.Path)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	}

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)
	eventRepo := repository.NewLeadEventRepository(db)

	// Initialize services
	notificationService := initializeNotificationService(cfg.Email)
	rateLimiter := initializeRateLimiter(cfg, rc)

	links := businessflow.NewLinkBuilder(
		cfg.Links.CalendlyBaseURL,
		cfg.Links.WhatsAppPhone,
		cfg.Links.WhatsAppTemplate,
		cfg.Links.FrontendURL,
	)

	// Initialize flow
	leadFlow := businessflow.NewLeadFlow(
		leadRepo,
		eventRepo,
		rateLimiter,
		notificationService,
		links,
		businessflow.LeadFlowSettings{
			SpamScoreThreshold: cfg.AntiSpam.SpamScoreThreshold,
			ConfirmTokenTTL:    cfg.AntiSpam.ConfirmTokenTTL,
			IPHashSecret:       cfg.AntiSpam.IPHashSecret,
		},
		db,
	)

	// Initialize handlers and router
	leadHandler := handlers.NewLeadHandler(leadFlow)
	appRouter := router.NewFiberRouter(leadHandler, cfg)

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
