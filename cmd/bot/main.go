/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the gym attendance bot: configuration,
  logging, the SQLite ledger, the Telegram update loop, the schedule
  coordinator, and the HTTP command surface, with graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (config.yaml + environment)
  3. Initialize SQLite store (fatal if unavailable)
  4. Start schedule coordinator and Telegram update loop
  5. Start HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Directory containing config.yaml (default: .)
  -db      Override the SQLite database path
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the coordinator and the update loop
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
  4. Exit

SEE ALSO:
  - config/config.go: Configuration sources and validation
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/weekiatscis/GymBot/api"
	"github.com/weekiatscis/GymBot/attendance"
	"github.com/weekiatscis/GymBot/config"
	"github.com/weekiatscis/GymBot/schedule"
	"github.com/weekiatscis/GymBot/store/sqlite"
	"github.com/weekiatscis/GymBot/telegram"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	dbPath := flag.String("db", "", "override SQLite database path")
	flag.Parse()

	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	schedCfg, err := cfg.CoordinatorConfig()
	if err != nil {
		logger.Fatal("invalid schedule configuration", zap.Error(err))
	}

	// Storage unavailability at startup is the one fatal storage error.
	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	client := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.ChatID, logger.Named("telegram"))
	recorder := attendance.NewRecorder(store)
	bot := telegram.NewBot(client, recorder, store, schedCfg.Location, logger.Named("bot"))

	coordinator := schedule.NewCoordinator(schedCfg, store, client, logger.Named("schedule"))
	coordinator.Start()
	defer coordinator.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("update loop exited", zap.Error(err))
		}
	}()

	handler := api.NewHandler(store, schedCfg.Location, logger.Named("api"))
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("gym bot is running",
			zap.String("addr", cfg.Server.Addr),
			zap.String("db", cfg.Storage.Path))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}

func newLogger() *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zap.InfoLevel,
	)
	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel))
}
