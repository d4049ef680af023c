package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/evinsights/analyst-engine/pkg/analyst"
	"github.com/evinsights/analyst-engine/pkg/config"
	"github.com/evinsights/analyst-engine/pkg/database"
	"github.com/evinsights/analyst-engine/pkg/datasource"
	"github.com/evinsights/analyst-engine/pkg/handlers"
	"github.com/evinsights/analyst-engine/pkg/llm"
	"github.com/evinsights/analyst-engine/pkg/logging"
	"github.com/evinsights/analyst-engine/pkg/middleware"
	"github.com/evinsights/analyst-engine/pkg/repositories"
	"github.com/evinsights/analyst-engine/pkg/retry"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting analyst-engine",
		zap.String("version", cfg.Version),
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	client, err := llm.NewClientFromConfig(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("failed to create AI client", zap.Error(err))
	}

	introspector := datasource.NewIntrospector(db.Pool, cfg.Database.Schema, logger)
	executor := datasource.NewExecutor(db.Pool, cfg.Database.QueryTimeout(), logger)
	historyRepo := repositories.NewAnalystHistoryRepository(db)

	service := analyst.NewService(
		analyst.NewClassifier(client, logger),
		analyst.NewGenerator(client, logger),
		analyst.NewSynthesizer(client, cfg.Analyst.AnswerRowLimit, logger),
		introspector,
		executor,
		historyRepo,
		cfg.Analyst.MaxQuestionLength,
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAnalystHandler(service, historyRepo, cfg.Analyst.HistoryLimit, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:         cfg.BindAddr + ":" + cfg.Port,
		Handler:      middleware.RequestLogger(logger)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: askDeadline(cfg),
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// askDeadline bounds the slowest legitimate request: a data-query turn makes
// up to three model calls (classify, generate, synthesize) plus one bounded
// statement, and the write timeout must outlast all of them.
func askDeadline(cfg *config.Config) time.Duration {
	return 3*cfg.AI.RequestTimeout() + cfg.Database.QueryTimeout() + 15*time.Second
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runMigrations applies engine-owned schema migrations through database/sql,
// which golang-migrate requires.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger)
}
