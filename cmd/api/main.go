package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attaboy/strokecheck/internal/app"
	"github.com/attaboy/strokecheck/internal/auth"
	"github.com/attaboy/strokecheck/internal/infra"
	"github.com/attaboy/strokecheck/internal/repository"
	"github.com/attaboy/strokecheck/internal/risk"
	"github.com/attaboy/strokecheck/internal/session"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := infra.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	// Risk evaluator. A missing model is fatal for the forest strategy.
	evaluator, err := risk.New(cfg.Strategy, cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("init evaluator: %w", err)
	}
	logger.Info("risk evaluator ready", "strategy", evaluator.Name())

	// Credential store
	store, closeStore, err := openCredentialStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Sessions
	sessions, err := openSessionStore(cfg, logger)
	if err != nil {
		return err
	}
	defer sessions.Close()
	tracker := auth.NewTracker(auth.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL), sessions, cfg.CookieSecure)

	// Audit events
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	router, err := app.NewRouter(app.RouterDeps{
		Store:          store,
		Tracker:        tracker,
		Evaluator:      evaluator,
		Events:         infra.NewAuditPublisher(producer, cfg.AuditTopic),
		Metrics:        infra.NewMetrics(),
		Logger:         logger,
		StrictForm:     cfg.StrictForm,
		LoginRateLimit: cfg.LoginRateLimit,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	// Start server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("strokecheck server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// openCredentialStore picks Postgres when DATABASE_URL is set and the
// JSON file otherwise.
func openCredentialStore(ctx context.Context, cfg *infra.Config, logger *slog.Logger) (repository.CredentialStore, func(), error) {
	if !cfg.UsePostgres() {
		store := repository.NewFileCredentialStore(cfg.UsersFile, logger)
		if err := store.Init(ctx); err != nil {
			return nil, nil, fmt.Errorf("init credential file: %w", err)
		}
		logger.Info("using file credential store", "path", cfg.UsersFile)
		return store, func() {}, nil
	}

	if cfg.RunMigrations {
		if err := infra.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir, logger); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("using postgres credential store")
	return repository.NewPgCredentialStore(pool), pool.Close, nil
}

func openSessionStore(cfg *infra.Config, logger *slog.Logger) (session.Store, error) {
	if cfg.SessionBackend == "badger" {
		store, err := session.OpenBadgerStore(cfg.SessionDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open session db: %w", err)
		}
		logger.Info("using badger session store", "path", cfg.SessionDBPath)
		return store, nil
	}
	return session.NewMemoryStore(), nil
}
