package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	httpadapter "github.com/couchcryptid/swasthya-alert/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/swasthya-alert/internal/adapter/kafka"
	"github.com/couchcryptid/swasthya-alert/internal/config"
	"github.com/couchcryptid/swasthya-alert/internal/inference"
	"github.com/couchcryptid/swasthya-alert/internal/model"
	"github.com/couchcryptid/swasthya-alert/internal/observability"
	"github.com/couchcryptid/swasthya-alert/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := inference.ArtifactLoader{
		Options: model.Options{
			Path:       cfg.ModelPath,
			Format:     cfg.ModelFormat,
			RuntimeLib: cfg.ONNXRuntimeLib,
		},
		CacheSize: cfg.PredictionCacheSize,
		Observer:  metrics,
		Logger:    logger,
	}
	service := inference.New(loader, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A failed preload is not fatal: /readyz reports it and every request
	// answers with the model-unavailable message.
	if cfg.ModelPreload {
		if err := service.Load(ctx); err != nil {
			logger.Error("classifier preload failed", "error", err, "path", cfg.ModelPath)
		}
	}

	ready := readinessChecks{service}

	// Stream scoring is feature-flagged via KAFKA_ENABLED.
	var (
		p      *pipeline.Pipeline
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(service, logger)
		p = pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		ready = append(ready, p)
		logger.Info("stream scoring enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		logger.Info("stream scoring disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, service, ready, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	var exitCode atomic.Int32

	// Start stream scoring.
	if p != nil {
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
				exitCode.Store(1)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := service.Close(); err != nil {
		logger.Error("classifier close error", "error", err)
	}

	logger.Info("shutdown complete")
	if code := exitCode.Load(); code != 0 {
		os.Exit(int(code))
	}
}

// readinessChecks is ready when every check is.
type readinessChecks []sharedobs.ReadinessChecker

func (r readinessChecks) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
