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

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/router"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// @title           Fintrack API
// @version         1.0
// @description     Income and expense tracking with receipt attachments, a starting balance and dashboard aggregates.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

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
	ctx := context.Background()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.LogLevel != "" {
		if err := logger.SetLevel(appConfig.LogLevel); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	gateway, err := newGateway(ctx, appConfig)
	if err != nil {
		return err
	}

	userCache, closeCache, err := newUserCache(ctx, appConfig)
	if err != nil {
		return err
	}
	defer closeCache()

	orphans := services.OrphanReporters{services.NewLogOrphanReporter()}
	if appConfig.AMQPURL != "" {
		publisher, err := amqp.NewPublisher(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPOrphanQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		defer publisher.Close()
		orphans = append(orphans, publisher)
		log.Infof("Orphaned blob events published to exchange %s", appConfig.AMQPExchange)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	settingsService := services.NewSettingsService(db)
	attachmentService := services.NewAttachmentService(gateway, orphans, appConfig.UploadMaxBytes)

	engine := router.New(router.Deps{
		Tokens:            middleware.NewJWTManager(appConfig.JWTSecret, appConfig.JWTExpirationDur),
		UserCache:         userCache,
		Users:             userService,
		Transactions:      services.NewTransactionService(db, attachmentService),
		Settings:          settingsService,
		Dashboard:         services.NewDashboardService(db, settingsService),
		Audit:             services.NewAuditService(db),
		UploadMaxBytes:    appConfig.UploadMaxBytes,
		CORSAllowedOrigin: appConfig.CORSAllowedOrigin,
		RequestLogging:    true,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Fintrack server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Infof("Shutdown signal received: %s", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

func newGateway(ctx context.Context, cfg *config.Config) (storage.Gateway, error) {
	if cfg.StorageDriver == "memory" {
		logger.Get().Warn("Using in-memory blob storage; attachments are lost on restart")
		return storage.NewMemoryGateway(cfg.StoragePublicURL, "fintrack-dev"), nil
	}
	gateway, err := storage.NewGCSGateway(ctx, storage.GCSConfig{
		Bucket:          cfg.GCSBucket,
		ProjectID:       cfg.GCSProjectID,
		CredentialsJSON: cfg.GCSCredentialsJSON,
		CredentialsFile: cfg.GCSCredentialsFile,
		PublicBaseURL:   cfg.StoragePublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage gateway: %w", err)
	}
	return gateway, nil
}

func newUserCache(ctx context.Context, cfg *config.Config) (cache.UserCache, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NopUserCache{}, func() {}, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Get().Infof("User cache enabled at %s (ttl %s)", cfg.RedisAddr, cfg.UserCacheTTL)
	return cache.NewRedisUserCache(client, cfg.UserCacheTTL), func() { _ = client.Close() }, nil
}
