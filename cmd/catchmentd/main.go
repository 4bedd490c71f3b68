package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/riverwatch/catchment-service/internal/adapter/http"
	kafkaadapter "github.com/riverwatch/catchment-service/internal/adapter/kafka"
	"github.com/riverwatch/catchment-service/internal/config"
	"github.com/riverwatch/catchment-service/internal/domain"
	"github.com/riverwatch/catchment-service/internal/observability"
	"github.com/riverwatch/catchment-service/internal/pipeline"
	"github.com/riverwatch/catchment-service/internal/registry"
	"github.com/riverwatch/catchment-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Build the catchment, bounded when CATCHMENT_BOUNDARY points at a
	// boundary file, otherwise admitting every site.
	var catchment *domain.Catchment
	if cfg.CatchmentBoundary != "" {
		catchment, err = domain.NewCatchmentFromBoundary(cfg.CatchmentName, cfg.CatchmentBoundary)
		if err != nil {
			logger.Error("failed to load catchment boundary", "path", cfg.CatchmentBoundary, "error", err)
			os.Exit(1)
		}
		logger.Info("catchment bounded", "name", cfg.CatchmentName, "boundary", cfg.CatchmentBoundary)
	} else {
		catchment = domain.NewCatchment(cfg.CatchmentName)
		logger.Info("catchment unbounded, admitting all sites", "name", cfg.CatchmentName)
	}

	sites := registry.New(catchment)
	readings := store.New()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(sites, metrics, logger)

	// Each batch feeds the in-memory readings store and the sink topic.
	loader := pipeline.FanoutLoader{readings, writer}

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, sites, readings, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start readings pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
