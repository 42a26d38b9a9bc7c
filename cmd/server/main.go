// Command pressroom-server starts the Pressroom HTTP API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pressroom-io/pressroom/internal/config"
	"github.com/pressroom-io/pressroom/internal/limiter"
	"github.com/pressroom-io/pressroom/internal/migrate"
	"github.com/pressroom-io/pressroom/internal/repository/postgres"
	httpserver "github.com/pressroom-io/pressroom/internal/server/http"
	"github.com/pressroom-io/pressroom/internal/service"
	"github.com/pressroom-io/pressroom/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and starts the HTTP server.
func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.PGDSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	db := &postgres.DB{Pool: pool}
	userRepo := postgres.NewUserRepo(db)
	postRepo := postgres.NewPostRepo(db)

	lim := limiter.NewPG(pool, cfg.LoginFailWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)

	// Services
	codec := token.New([]byte(cfg.JWTSecret), nil)
	authSvc := service.NewAuthService(userRepo, codec, cfg.AccessTTL, cfg.RefreshTTL, lim)
	postSvc := service.NewPostService(postRepo, service.NewAccessEngine(logger))
	userSvc := service.NewUserService(userRepo, logger)

	app := httpserver.New(authSvc, postSvc, userSvc, codec, logger)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      app.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
