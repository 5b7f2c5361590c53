package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/cache"
	"github.com/lexcase/caseflow/internal/clock"
	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/database"
	"github.com/lexcase/caseflow/internal/events"
	"github.com/lexcase/caseflow/internal/handler"
	"github.com/lexcase/caseflow/internal/logging"
	"github.com/lexcase/caseflow/internal/mailer"
	"github.com/lexcase/caseflow/internal/service"
	"github.com/lexcase/caseflow/internal/storage"
)

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("auth.jwtSecret must be set")
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStartup()

	// Connect to database
	stores, err := database.Open(startupCtx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer stores.Close(context.Background())

	// Initialize Redis cache and Kafka producer (if enabled)
	unread, closeCache := cache.New(startupCtx, cfg.Redis, logger)
	defer closeCache()

	publisher := events.New(cfg.Kafka, logger)
	defer publisher.Close()

	// Initialize document storage
	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Create services
	notificationService := service.NewNotificationService(
		stores.Notifications,
		stores.Cases,
		stores.Users,
		mailer.New(cfg.Email, logger),
		cfg.Reminders.AppURL,
		logger,
	).WithUnreadCache(unread).WithPublisher(publisher)

	reminderService := service.NewReminderService(
		stores.Cases,
		stores.Users,
		stores.Notifications,
		notificationService,
		clock.Real{},
		cfg.Reminders.Location(),
		cfg.Reminders.Deduplicate,
		logger,
	)

	documentService := service.NewDocumentService(store, cfg.Upload, logger)

	// Create HTTP server
	routerCfg := handler.RouterConfig{
		Notifications: handler.NewNotificationHandler(notificationService, logger),
		Documents:     handler.NewDocumentHandler(documentService, logger),
		Internal:      handler.NewInternalHandler(notificationService, reminderService, logger),
		JWTSecret:     cfg.Auth.JWTSecret,
		ServiceKey:    cfg.Auth.ServiceKey,
		Logger:        logger,
	}
	if cfg.Storage.Type == "local" {
		routerCfg.FilesDir = cfg.Storage.Local.BasePath
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
