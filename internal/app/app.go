package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-forum/internal/auth"
	"go-forum/internal/config"
	"go-forum/internal/database"
	"go-forum/internal/handler"
	"go-forum/internal/metrics"
	"go-forum/internal/middleware"
	"go-forum/internal/repository"
	"go-forum/internal/router"
	"go-forum/internal/service"
)

type App struct {
	server          *http.Server
	shutdownTimeout time.Duration
	cleanupFuncs    []func()
}

func New(ctx context.Context, cfg *config.Config) (app *App, err error) {
	var cleanups []func()
	defer func() {
		if err != nil {
			runCleanups(cleanups)
		}
	}()

	slog.Info("connecting to database", "driver", cfg.DBDriver)
	db, err := database.New(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanups = append(cleanups, db.Close)

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	store := repository.NewStore(db.SQL)
	m := metrics.New(db.SQL)
	slog.Info("database ready")

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	var revoker auth.Revoker
	if cfg.RedisURL != "" {
		client, err := auth.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		revoker = auth.NewRedisRevoker(client)
		slog.Info("token revocation backed by redis")
	} else {
		revoker = auth.NewMemoryRevoker(cfg.RevocationCacheSize, cfg.JWTTTL)
		slog.Info("token revocation kept in memory", "capacity", cfg.RevocationCacheSize)
	}

	auditService := service.NewAuditService(store.Audit, cfg.AuditRetention, m)
	authService, err := service.NewAuthService(store, auth.NewPasswordHasher(cfg.BcryptCost), tokens, revoker, auditService, m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	topicService := service.NewTopicService(store, auditService, m)
	postService := service.NewPostService(store, auditService, m)

	if cfg.AuditRetention > 0 {
		scheduler, err := auditService.StartPruning(cfg.AuditPruneSchedule)
		if err != nil {
			return nil, err
		}
		cleanups = append(cleanups, func() { <-scheduler.Stop().Done() })
		slog.Info("audit pruning scheduled", "schedule", cfg.AuditPruneSchedule, "retention", cfg.AuditRetention)
	}

	handlers := router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		User:   handler.NewUserHandler(authService, topicService, auditService),
		Topic:  handler.NewTopicHandler(topicService),
		Post:   handler.NewPostHandler(postService),
		Health: handler.NewHealthHandler(db),
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(cfg, middleware.NewAuthMiddleware(authService), m, handlers),
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		ReadTimeout:       cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{server: server, shutdownTimeout: cfg.ShutdownTimeout, cleanupFuncs: cleanups}, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// releases every resource acquired by New.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) Close() {
	runCleanups(a.cleanupFuncs)
	a.cleanupFuncs = nil
}

// runCleanups releases resources in reverse acquisition order.
func runCleanups(cleanups []func()) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
