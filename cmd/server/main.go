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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"zia/internal/bot"
	"zia/internal/config"
	"zia/internal/executor"
	_ "zia/internal/executor/docker"
	"zia/internal/feedback"
	"zia/internal/handlers"
	"zia/internal/jobs"
	"zia/internal/llm"
	_ "zia/internal/llm/gemini"
	"zia/internal/metrics"
	"zia/internal/prompts"
	"zia/internal/resilience"
	"zia/internal/routers"
	"zia/internal/session"
	"zia/internal/utils"
)

func registerRoutes(router *chi.Mux, botHandler *handlers.BotHandler, feedbackHandler *handlers.FeedbackHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.BotRoutes(router, botHandler)
	routers.FeedbackRoutes(router, feedbackHandler)
}

func newRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("zia"))

	return router
}

// openDialector picks the gorm driver for the configured database
func openDialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres":
		return postgres.Open(cfg.Postgres.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("database driver %q has no dialector", cfg.DBDriver)
	}
}

// initDatabase opens the feedback database. A nil DB with a nil error means
// ratings are disabled by configuration.
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "none" {
		return nil, nil
	}
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func executorSettings(cfg *config.Config) executor.Settings {
	settings := executor.DefaultSettings()
	settings.WandboxURL = cfg.WandboxURL
	settings.WallTime = cfg.ExecTimeout
	if cfg.ExecTimeout*2 > settings.HTTPTimeout {
		settings.HTTPTimeout = cfg.ExecTimeout * 2
	}
	if cfg.ExecMemoryMB > 0 {
		settings.MemoryBytes = cfg.ExecMemoryMB << 20
	}
	if cfg.ExecCPUs > 0 {
		settings.NanoCPUs = int64(cfg.ExecCPUs * 1e9)
	}
	return settings
}

func guardConfig(cfg *config.Config, name string, logger *zap.Logger) resilience.Config {
	gc := resilience.DefaultConfig(name)
	gc.MaxConcurrent = cfg.MaxConcurrent
	gc.FailureThreshold = cfg.FailureThreshold
	gc.OpenTimeout = cfg.OpenTimeout
	gc.Logger = logger
	return gc
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	utils.SetLogger(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("executor", cfg.ExecutorBackend),
		zap.String("db_driver", cfg.DBDriver))

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	baseProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}
	provider := llm.NewGuardedProvider(baseProvider, guardConfig(cfg, cfg.Provider, logger))

	baseExecutor, err := executor.NewExecutor(cfg.ExecutorBackend, executorSettings(cfg))
	if err != nil {
		logger.Fatal("Failed to initialize code executor", zap.Error(err))
	}
	if warmer, ok := baseExecutor.(interface{ WarmImages(context.Context) error }); ok {
		warmCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if err := warmer.WarmImages(warmCtx); err != nil {
			logger.Warn("Failed to pre-pull sandbox images", zap.Error(err))
		}
		cancel()
	}
	codeExecutor := executor.NewGuarded(baseExecutor, guardConfig(cfg, baseExecutor.Name(), logger))

	sessions := session.NewStore()

	// ratings are optional; the bot runs without them
	var feedbackManager *feedback.FeedbackManager
	var feedbackHandler *handlers.FeedbackHandler
	var exporterJob *jobs.FeedbackExporterJob

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database, feedback system will be disabled", zap.Error(err))
	}
	if db != nil {
		feedbackManager = feedback.NewFeedbackManager(db, cfg.FeedbackCacheTTL, logger)
		if err := feedbackManager.Migrate(); err != nil {
			logger.Error("Failed to migrate feedback table, feedback system will be disabled", zap.Error(err))
			feedbackManager.Close()
			feedbackManager = nil
		}
	}
	if feedbackManager != nil {
		exporterConfig := &jobs.ExporterConfig{
			Schedule:      cfg.ExportSchedule,
			ExportDir:     cfg.ExportDir,
			ExportEnabled: cfg.ExportEnabled,
		}
		exporterJob = jobs.NewFeedbackExporterJob(feedbackManager, exporterConfig, logger)
		if exporterConfig.ExportEnabled {
			if err := exporterJob.Start(); err != nil {
				logger.Error("Failed to start feedback exporter job", zap.Error(err))
			} else {
				logger.Info("Feedback exporter job started", zap.String("schedule", exporterConfig.Schedule))
			}
		}
		feedbackHandler = handlers.NewFeedbackHandler(feedbackManager, logger)
		logger.Info("Feedback system initialized successfully")
	}

	auditJob := jobs.NewSessionAuditJob(sessions, cfg.SessionAuditSchedule, logger)
	if err := auditJob.Start(); err != nil {
		logger.Error("Failed to start session audit job", zap.Error(err))
	}

	deps := bot.Deps{
		Provider: provider,
		Prompts:  promptManager,
		Executor: codeExecutor,
		Sessions: sessions,
		Logger:   logger,
	}
	if feedbackManager != nil {
		deps.Feedback = feedbackManager
	}
	zia := bot.New(deps, bot.Options{
		Prefix:        cfg.Prefix,
		Cooldown:      cfg.Cooldown,
		MaxCodeLength: cfg.MaxCodeLength,
	})

	healthHandler := handlers.NewHealthHandler(provider, promptManager, cfg).
		WithExecutor(codeExecutor).
		WithSessions(sessions)
	if feedbackManager != nil {
		healthHandler.WithDatabase(feedbackManager)
	}

	router := newRouter(cfg)
	registerRoutes(router, handlers.NewBotHandler(zia, logger), feedbackHandler, healthHandler)

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Zia gateway starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Zia gateway shutting down...")

	auditJob.Stop()
	if exporterJob != nil {
		exporterJob.Stop()
		logger.Info("Feedback exporter job stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	_ = zia.Close()
	if feedbackManager != nil {
		feedbackManager.Close()
	}

	logger.Info("Zia gateway exited")
}
