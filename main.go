package main

import (
	"context"
	"log"
	"time"

	"audit-auth/cmd"
	"audit-auth/internal/data/migrations"
	"audit-auth/internal/data/repository"
	"audit-auth/internal/data/repository/memrepo"
	"audit-auth/internal/usecase"
	"audit-auth/internal/wire"
	"audit-auth/pkg/database"
	"audit-auth/pkg/mailer"
	"audit-auth/pkg/ratelimit"
	"audit-auth/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using zap production logger.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("port", config.App.Port),
		zap.String("storage", config.App.Storage),
		zap.Bool("debug", config.App.Debug),
	)

	var shutdown []func(context.Context) error

	// Storage
	var repo *repository.Repository
	switch config.App.Storage {
	case utils.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		repo = memrepo.NewRepository()
	default:
		db, err := database.InitDB(config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		logger.Info("Database connected successfully")

		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err = db.Migrate(migrateCtx, migrations.FS, logger)
		cancel()
		if err != nil {
			db.Close()
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}

		repo = repository.NewRepository(db, logger)
		defer db.Close()
	}

	// Notifier
	var sender mailer.Notifier
	if config.Email.Enabled() {
		sender = mailer.NewSMTPNotifier(config.Email, config.App.Name)
	} else {
		logger.Warn("SMTP not configured; OTP codes will be written to the log")
		sender = mailer.NewLogNotifier(logger)
	}
	dispatcher := mailer.NewDispatcher(sender, mailer.DefaultDispatcherConfig(), logger)
	shutdown = append(shutdown, dispatcher.Close)

	// Throttling
	var limiter ratelimit.Limiter = ratelimit.Noop{}
	if config.Redis.URL != "" {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		client, err := ratelimit.NewRedisClient(pingCtx, config.Redis.URL)
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, "auth")
		logger.Info("Failed-attempt throttling enabled")
	}

	// Wire all dependencies
	app := wire.Wiring(wire.Deps{
		Repo:     repo,
		Tokens:   utils.NewTokenIssuer(config.JWT),
		Notifier: dispatcher,
		Limiter:  limiter,
	}, config, logger)

	// OTP janitor
	if config.OTP.CleanupIntervalMinutes > 0 {
		janitorCtx, stopJanitor := context.WithCancel(context.Background())
		janitor := usecase.NewOTPJanitor(repo.OTP, time.Duration(config.OTP.CleanupIntervalMinutes)*time.Minute, logger)
		go janitor.Run(janitorCtx)
		shutdown = append([]func(context.Context) error{func(context.Context) error {
			stopJanitor()
			return nil
		}}, shutdown...)
	}

	if err := cmd.APIServer(app.Router, config.App.Port, logger, shutdown...); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server stopped")
}
