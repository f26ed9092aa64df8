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

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-risk-etl/internal/adapter/cwa"
	"github.com/couchcryptid/quake-risk-etl/internal/adapter/filestore"
	httpadapter "github.com/couchcryptid/quake-risk-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-risk-etl/internal/adapter/kafka"
	"github.com/couchcryptid/quake-risk-etl/internal/adapter/postgres"
	"github.com/couchcryptid/quake-risk-etl/internal/config"
	"github.com/couchcryptid/quake-risk-etl/internal/domain"
	"github.com/couchcryptid/quake-risk-etl/internal/observability"
	"github.com/couchcryptid/quake-risk-etl/internal/pipeline"
)

type resultStore interface {
	pipeline.ResultStore
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog source, optionally behind a TTL cache (CATALOG_CACHE_TTL).
	var source domain.CatalogSource = cwa.NewClient(cfg, metrics, logger)
	if cfg.CatalogCacheTTL > 0 {
		source = cwa.NewCachedSource(source, cfg.CatalogCacheTTL, clock, metrics)
		logger.Info("catalog cache enabled", "ttl", cfg.CatalogCacheTTL)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open result store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("result store close error", "error", err)
		}
	}()

	runCtx := domain.NewRunContext(cfg.TriggeredBy, clock)
	runner := pipeline.New(source, store, runCtx, logger, metrics, cfg.DedupEvents)

	if cfg.RunOnce() {
		if _, err := runner.RunOnce(ctx); err != nil {
			stop()
			store.Close() //nolint:errcheck // exiting on run failure
			os.Exit(1)
		}
		return
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, runner, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start scheduled runs.
	go func() {
		if err := runner.Run(ctx, cfg.RunInterval); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// openStore builds the result store selected by STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (resultStore, error) {
	switch cfg.StoreBackend {
	case config.StoreKafka:
		logger.Info("using kafka result store",
			"brokers", cfg.KafkaBrokers,
			"snapshot_topic", cfg.KafkaSnapshotTopic,
			"history_topic", cfg.KafkaHistoryTopic,
		)
		return kafkaadapter.NewWriter(cfg, logger), nil
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close() //nolint:errcheck // already failing
			return nil, err
		}
		logger.Info("using postgres result store")
		return store, nil
	case config.StoreFile:
		logger.Info("using file result store", "dir", cfg.FileStoreDir)
		return filestore.New(cfg.FileStoreDir), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
