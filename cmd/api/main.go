package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside/accounts-api/internal/api"
	"github.com/courtside/accounts-api/internal/api/metrics"
	"github.com/courtside/accounts-api/internal/core/service"
	"github.com/courtside/accounts-api/internal/core/token"
	"github.com/courtside/accounts-api/internal/infrastructure/config"
	"github.com/courtside/accounts-api/internal/infrastructure/db/postgres"
	redisdb "github.com/courtside/accounts-api/internal/infrastructure/db/redis"
	"github.com/courtside/accounts-api/internal/infrastructure/queue"
	"github.com/courtside/accounts-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg := config.Load(slog.Default())
	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	pool, err := postgres.Connect(ctx, cfg.Postgres.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	if err := postgres.Migrate(cfg.Postgres.URI); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = rdb.Close() }()

	limiter := redisdb.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)

	dispatcher := queue.NewDispatcher(cfg.EventWorkers, queue.NewAuditRecorder(log), log)
	dispatcher.Start(ctx)
	go trackQueueDepth(ctx, dispatcher)

	codec := token.NewCodec([]byte(cfg.AuthTokenKey), cfg.AuthTokenTTL, nil)
	repo := postgres.NewUserRepository(pool)
	users := service.NewUserService(repo, codec, []byte(cfg.PasswordKey), limiter, dispatcher, log, nil)

	e := api.NewRouter(users, codec, cfg.AuthTokenTTL, pool, rdb, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received interruption signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	log.Info().Msg("shutdown complete")
}

func trackQueueDepth(ctx context.Context, d *queue.Dispatcher) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.EventsQueueDepth.Set(float64(d.Depth()))
		}
	}
}
