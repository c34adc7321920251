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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"medshop/m/internal/api"
	"medshop/m/internal/auth"
	"medshop/m/internal/config"
	"medshop/m/internal/database"
	"medshop/m/internal/idempotency"
	"medshop/m/internal/logging"
	"medshop/m/internal/migrations"
	"medshop/m/internal/seed"
	"medshop/m/internal/service"
	"medshop/m/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLogs, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		LokiURL: cfg.LokiURL,
		Job:     "medshop",
	})
	if err != nil {
		return err
	}
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, "medshop", cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", slog.Any("error", err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.Connect(cfg.DBDriver, cfg.DatabaseDSN, cfg.DBMaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Run(db, cfg.DatabaseDSN); err != nil {
		return err
	}

	if cfg.SeedFixtures {
		if err := seed.LoadFixtures(ctx, db, logger); err != nil {
			return err
		}
	}
	if cfg.SeedCatalog != "" {
		if _, err := seed.LoadCatalogFile(ctx, db, cfg.SeedCatalog, logger); err != nil {
			logger.Warn("item catalog not loaded", slog.Any("error", err))
		}
	}

	if cfg.DefaultOwnerPassword() {
		logger.Warn("OWNER_PASSWORD not set, using the default owner secret")
	}
	guard, err := auth.NewGuard(cfg.OwnerPassword, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var idem api.IdempotencyStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, idempotency keys disabled", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
		} else {
			idem = idempotency.NewRedisStore(client, idempotency.DefaultTTL)
		}
	}

	handler := api.New(api.Options{
		DB:          db,
		Purchases:   service.NewPurchaseService(db, logger, cfg.DBAcquireTimeout),
		Guard:       guard,
		Tokens:      auth.NewTokens(cfg.Secret, cfg.OwnerTokenTTL),
		Idempotency: idem,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("medical shop server starting",
			slog.String("port", cfg.HTTPPort),
			slog.String("driver", cfg.DBDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
