package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/btquan/tweetnest/internal/archive"
	"github.com/btquan/tweetnest/internal/bot/handler"
	"github.com/btquan/tweetnest/internal/bot/queue"
	"github.com/btquan/tweetnest/internal/bot/report"
	"github.com/btquan/tweetnest/internal/bot/worker"
	"github.com/btquan/tweetnest/internal/config"
	"github.com/btquan/tweetnest/internal/enrich"
	"github.com/btquan/tweetnest/internal/fetch"
	"github.com/btquan/tweetnest/internal/ops"
	"github.com/btquan/tweetnest/internal/telegram"
	"github.com/btquan/tweetnest/shared/logger"
	"github.com/btquan/tweetnest/shared/postgresql"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("BOT_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/bot/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting bot",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("archive_backend", cfg.Archive.Backend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Archive backend (one target per deployment)
	arch, dbClient, err := initArchive(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize archive: %w", err)
	}
	if dbClient != nil {
		defer dbClient.Close()
	}

	// External service clients
	fetcher := fetch.NewTwitterFetcher(cfg.Credentials.TwitterBearerToken, appLogger.Logger)

	enricher, err := enrich.NewGeminiEnricher(ctx, cfg.Credentials.GeminiAPIKey, cfg.Gemini.Model, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize enricher: %w", err)
	}

	// Chat transport
	bot, err := telegram.New(&telegram.Config{
		Token:          cfg.Credentials.TelegramBotToken,
		PollingTimeout: cfg.Telegram.PollingTimeout,
		Logger:         appLogger.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram transport: %w", err)
	}

	// Core pipeline
	jobQueue := queue.New()
	reporter := report.New(appLogger.Logger, cfg.Worker.ReportTimeout)
	msgHandler := handler.New(appLogger.Logger, jobQueue, bot)

	workerInstance := worker.New(&worker.Config{
		Logger:   appLogger.Logger,
		Queue:    jobQueue,
		Fetcher:  fetcher,
		Enricher: enricher,
		Archive:  arch,
		Reporter: reporter,
		Cooldown: cfg.Worker.Cooldown,
	})

	errChan := make(chan error, 3)

	// Worker loop on its own goroutine; it performs the slow external
	// calls and must never run on the dispatch goroutine.
	go func() {
		if err := workerInstance.Run(ctx); err != nil && ctx.Err() == nil {
			errChan <- fmt.Errorf("worker: %w", err)
		}
	}()

	// Chat dispatch loop: inbound updates and status-report requests.
	go func() {
		if err := bot.Run(ctx, msgHandler, reporter); err != nil && ctx.Err() == nil {
			errChan <- fmt.Errorf("telegram: %w", err)
		}
	}()

	// Optional ops server
	var opsServer *ops.Server
	if cfg.Ops.Enabled {
		opsServer = ops.New(appLogger.Logger, jobQueue, cfg.Ops.Port)
		go func() {
			if err := opsServer.Start(); err != nil {
				errChan <- fmt.Errorf("ops: %w", err)
			}
		}()
	}

	appLogger.Info("Bot started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Component failed",
			slog.Any("error", err),
		)
		cancel()
		return err
	}

	cancel()

	if opsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Ops.ShutdownTimeout)
		defer shutdownCancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("Ops server shutdown failed",
				slog.Any("error", err),
			)
		}
	}

	appLogger.Info("Bot shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initArchive builds the configured archive backend. The returned
// database client is non-nil only for the postgres backend; the caller
// owns closing it.
func initArchive(cfg *config.Config, appLogger *logger.Logger) (worker.Archive, *postgresql.Client, error) {
	switch cfg.Archive.Backend {
	case config.BackendNotion:
		return archive.NewNotionArchive(
			cfg.Credentials.NotionAPIKey,
			cfg.Archive.Notion.DatabaseID,
			appLogger.Logger,
		), nil, nil

	case config.BackendPostgres:
		dbClient, err := postgresql.NewClient(&postgresql.Config{
			Host:            cfg.Archive.Postgres.Host,
			Port:            cfg.Archive.Postgres.Port,
			User:            cfg.Archive.Postgres.User,
			Password:        cfg.Credentials.PostgresPassword,
			Database:        cfg.Archive.Postgres.Database,
			SSLMode:         cfg.Archive.Postgres.SSLMode,
			MaxOpenConns:    cfg.Archive.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Archive.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Archive.Postgres.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Archive.Postgres.ConnMaxIdleTime,
		}, appLogger.Logger)
		if err != nil {
			return nil, nil, err
		}
		return archive.NewPostgresArchive(dbClient, appLogger.Logger), dbClient, nil

	default:
		return nil, nil, fmt.Errorf("unknown archive backend: %q", cfg.Archive.Backend)
	}
}
