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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billpay/internal/auth"
	"github.com/mmynk/billpay/internal/billing"
	"github.com/mmynk/billpay/internal/config"
	"github.com/mmynk/billpay/internal/metrics"
	"github.com/mmynk/billpay/internal/middleware"
	"github.com/mmynk/billpay/internal/seed"
	"github.com/mmynk/billpay/internal/service"
	"github.com/mmynk/billpay/internal/storage"
	"github.com/mmynk/billpay/internal/storage/cache"
	"github.com/mmynk/billpay/internal/storage/postgres"
	"github.com/mmynk/billpay/internal/storage/sqlite"
	"github.com/mmynk/billpay/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger := logging.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Cache.Size > 0 {
		store = cache.New(store, cache.Config{Size: cfg.Cache.Size, TTL: cfg.Cache.TTL}, m)
		logger.Info("Subscriber cache enabled", "size", cfg.Cache.Size, "ttl", cfg.Cache.TTL)
	}

	if cfg.Seed.Enabled {
		data := seed.DefaultData(cfg.Seed.ElifPassword, cfg.Seed.AdminPassword)
		if _, err := seed.New(store, logger, m).Run(ctx, data); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
	}

	router := service.NewRouter(service.RouterConfig{
		Engine:        billing.NewEngine(store, logger, m),
		Authenticator: auth.NewPasswordAuthenticator(store),
		JWTManager:    auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Health:        store,
		Logger:        logger,
		Metrics:       m,
		Gatherer:      reg,
	})

	// h2c serves HTTP/2 without TLS alongside HTTP/1.1.
	handler := h2c.NewHandler(middleware.CORS(router), &http2.Server{})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", cfg.Server.Addr, "storage", cfg.Storage.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Type {
	case config.StoragePostgres:
		store, err := postgres.New(ctx, postgres.Config{
			URL:         cfg.PostgresURL,
			MaxConns:    int32(cfg.PostgresMaxConns),
			ConnTimeout: 10 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		logger.Info("Storage initialized", "type", cfg.Type)
		return store, nil
	default:
		store, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		logger.Info("Storage initialized", "type", cfg.Type, "database", cfg.DBPath)
		return store, nil
	}
}
