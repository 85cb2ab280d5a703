package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocabox/internal/config"
	"vocabox/internal/handler"
	"vocabox/internal/repository"
	"vocabox/internal/repository/migrations"
	"vocabox/internal/repository/postgres"
	"vocabox/internal/repository/sqlite"
	"vocabox/internal/service"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting vocabox bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully", zap.String("db_driver", cfg.Database.Driver))

	db, err := openDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := migrations.Up(db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo, wordRepo := newRepositories(cfg.Database.Driver, db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.BotPassword)
	learnerService := service.NewLearnerService(wordRepo, cfg.Review.SessionSize, logger)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize handler
	h := handler.NewHandler(bot, authService, learnerService, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	reminderService := service.NewReminderService(userRepo, learnerService, h, logger)

	// Start reminder job in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runReminderJob(ctx, reminderService, cfg.Review.ReminderInterval, logger)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	cancel()

	logger.Info("Bot stopped gracefully")
}

// openDatabase opens the configured database
func openDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	if cfg.Database.Driver == config.DriverSQLite {
		return sqlite.Open(cfg.Database.SQLitePath)
	}
	return connectPostgres(cfg.DSN(), logger)
}

func newRepositories(driver string, db *sql.DB) (repository.UserRepository, repository.WordRepository) {
	if driver == config.DriverSQLite {
		return sqlite.NewUserRepo(db), sqlite.NewWordRepo(db)
	}
	return postgres.NewUserRepo(db), postgres.NewWordRepo(db)
}

// connectPostgres connects to PostgreSQL with retries
func connectPostgres(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runReminderJob periodically nudges users with words waiting for review
func runReminderJob(ctx context.Context, reminders *service.ReminderService, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reminder job stopped")
			return
		case <-ticker.C:
			sent, err := reminders.SendDueReminders()
			if err != nil {
				logger.Error("Failed to send reminders", zap.Error(err))
				continue
			}
			logger.Debug("Reminder run finished", zap.Int("count", sent))
		}
	}
}
