// Package main implements the entry point for the flashgen API server,
// which turns user-submitted source text into AI-generated flashcard
// proposals over an OpenRouter-compatible completion API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/flashgen/flashgen-api/internal/config"
	"github.com/flashgen/flashgen-api/internal/generation"
	"github.com/flashgen/flashgen-api/internal/platform/logger"
	"github.com/flashgen/flashgen-api/internal/platform/openrouter"
	"github.com/flashgen/flashgen-api/internal/platform/postgres"
	"github.com/flashgen/flashgen-api/internal/service/auth"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 15 * time.Second

// application bundles the wired dependencies of the server process.
type application struct {
	config            *config.Config
	logger            *slog.Logger
	db                *sql.DB
	jwtService        auth.JWTService
	generationService *generation.Service
}

func main() {
	// A missing .env file is fine; real deployments configure through the
	// environment.
	_ = godotenv.Load()

	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}()

	if err := app.run(); err != nil {
		app.logger.Error("server terminated with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and wires the application components:
// logging, database, migrations, model gateway, stores and services.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"model", cfg.LLM.Model)

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	// The response cache is created once per process and handed to the
	// gateway explicitly.
	var cache *openrouter.ResponseCache
	if cfg.LLM.CacheEnabled {
		cache = openrouter.NewResponseCache(
			cfg.LLM.CacheSize,
			time.Duration(cfg.LLM.CacheTTLSeconds)*time.Second,
		)
	}

	gateway, err := openrouter.New(cfg.LLM, cache, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model gateway: %w", err)
	}

	generationStore := postgres.NewPostgresGenerationStore(db, appLogger)
	errorLogStore := postgres.NewPostgresGenerationErrorLogStore(db, appLogger)

	generationService, err := generation.NewService(
		gateway,
		generationStore,
		errorLogStore,
		cfg.LLM.Model,
		time.Duration(cfg.LLM.GenerationBudgetSeconds)*time.Second,
		appLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	return &application{
		config:            cfg,
		logger:            appLogger,
		db:                db,
		jwtService:        jwtService,
		generationService: generationService,
	}, nil
}

// run starts the HTTP server and blocks until shutdown completes.
func (app *application) run() error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutdown signal received, draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	app.logger.Info("server stopped")
	return nil
}
