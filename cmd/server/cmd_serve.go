package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"replate-api/internal/adapters/cache"
	"replate-api/internal/adapters/http/middleware"
	"replate-api/internal/adapters/http/routes"
	"replate-api/internal/adapters/mail"
	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/adapters/persistence/repositories"
	"replate-api/internal/adapters/storage"
	"replate-api/internal/config"
	"replate-api/internal/core/services"
	"replate-api/internal/pkg/logger"
	"replate-api/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// two 5MB images plus form fields
const bodyLimit = 12 * 1024 * 1024

var (
	janitorSchedule string
	skipMigrate     bool
)

// replate serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&janitorSchedule, "janitor-schedule", services.DefaultJanitorSchedule, "cron schedule of the orphaned upload sweep (empty disables it)")
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not auto-migrate the schema on start")
}

func serve(ctx context.Context) error {
	cfg, db, err := boot()
	if err != nil {
		return err
	}
	defer config.CloseDatabase(db)

	if !skipMigrate {
		if err := models.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("database migration completed")
	}

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var limits fiber.Storage
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		store := cache.NewRedisStorage(rdb, "replate:limiter:")
		defer store.Close()
		limits = store
		logger.Info("rate limits stored in redis", "addr", cfg.Redis.Addr)
	}

	var google services.GoogleVerifier
	if cfg.Google.ClientID != "" {
		google = services.NewIDTokenVerifier(cfg.Google.ClientID)
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in disabled")
	}

	m := metrics.New()

	janitor := services.NewUploadJanitor(repositories.NewStoreRepository(db), files, m)
	if janitorSchedule != "" {
		if err := janitor.Start(janitorSchedule); err != nil {
			return err
		}
		defer janitor.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "Replate API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    bodyLimit,
	})

	middleware.Setup(app, cfg, limits, m)

	routes.Setup(app, routes.Deps{
		DB:      db,
		Config:  cfg,
		Mailer:  mail.NewSMTPMailer(cfg.Mail),
		Files:   files,
		Google:  google,
		Metrics: m,
		Limits:  limits,
	})

	// Graceful shutdown
	go gracefulShutdown(app)

	logger.Info("server starting", "port", cfg.Port, "mode", cfg.AppMode, "storage", cfg.Storage.Driver)
	return app.Listen(":" + cfg.Port)
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	logger.Info("server stopped gracefully")
}

// boot loads configuration, initializes logging and opens the database
func boot() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.AppMode)

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
