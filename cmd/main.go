package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/handlers"
	"go_phrase_texter/internal/metrics"
	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/repository"
	"go_phrase_texter/internal/scheduler"
	"go_phrase_texter/internal/service"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Temporary logger until the configured one is ready.
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Loading config...")

	configPath := os.Getenv("APP_CONFIG_PATH")
	if configPath == "" {
		configPath = "configs"
	}
	if err := config.LoadConfig(configPath); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := &config.Cfg

	logger := newLogger(cfg.Log.Level, tempLogger)
	slog.SetDefault(logger)
	slog.Info("Application starting...", slog.String("app", config.AppName), slog.String("version", config.AppVersion))

	db, err := repository.NewDB(cfg.Database, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)
	middleware.InitPrometheus(registry)

	challengeRepo := repository.NewGormChallengeRepository()
	queryRepo := repository.NewGormQueryRepository()
	userRepo := repository.NewGormUserRepository()
	attemptRepo := repository.NewGormAttemptRepository()

	messenger := service.NewMessenger(cfg)
	userService := service.NewUserService(db, userRepo, messenger, cfg)
	challengeService := service.NewChallengeService(db, challengeRepo, userRepo, messenger, cfg)
	attemptService := service.NewAttemptService(db, queryRepo, attemptRepo, userRepo, challengeService, messenger, cfg)
	inquisitor := service.NewInquisitor(db, challengeRepo, queryRepo, messenger, cfg, nil, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Webhook.Secret == "" {
		slog.Warn("Webhook secret not set, inbound SMS will be refused")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	go rateLimiter.Cleanup(ctx, time.Minute)

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Gatherer:    registry,
		RateLimiter: rateLimiter,
		Users:       handlers.NewUserHandler(userService),
		Challenges:  handlers.NewChallengeHandler(challengeService, inquisitor),
		Queries:     handlers.NewQueryHandler(inquisitor, attemptService),
		SMSWebhook:  handlers.NewSMSWebhookHandler(attemptService),
	})

	var sched *scheduler.Scheduler
	if cfg.Inquisitor.Enabled {
		sched = scheduler.New(inquisitor, cfg.Inquisitor, logger)
		if err := sched.Start(); err != nil {
			slog.Error("Error starting scheduler", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		slog.Info("Inquisitor disabled, no queries will be scheduled")
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	slog.Info("Server exiting")
}

// newLogger uses tint for APP_ENV=dev and JSON otherwise.
func newLogger(level string, tempLogger *slog.Logger) *slog.Logger {
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		tempLogger.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", level))
	}

	appEnv := os.Getenv("APP_ENV")
	var handler slog.Handler
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	return slog.New(handler)
}
