package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alfagnish/dummydata/internal/config"
	"github.com/alfagnish/dummydata/internal/generator"
	"github.com/alfagnish/dummydata/internal/logging"
	"github.com/alfagnish/dummydata/internal/metrics"
	"github.com/alfagnish/dummydata/internal/server"
	"github.com/alfagnish/dummydata/internal/tracing"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to an optional YAML configuration file")
	flag.Parse()

	// 1. Load configuration from file and environment.
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// 2. Build the logger.
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("config",
		zap.String("listen", cfg.ListenAddr),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled),
		zap.Int("max_count", cfg.Generator.MaxCount),
	)

	// 3. Tracing is optional; a failure to set it up is not fatal.
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(context.Background(), cfg.Tracing.ServiceName, version, cfg.Tracing.Endpoint)
		if err != nil {
			logger.Warn("tracing unavailable", zap.Error(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Warn("tracer shutdown", zap.Error(err))
				}
			}()
			logger.Info("tracing initialized", zap.String("endpoint", cfg.Tracing.Endpoint))
		}
	}

	// 4. Metrics and the record generator.
	var m *metrics.Metrics
	genOpts := []generator.Option{
		generator.WithLogger(logger),
		generator.WithSeed(cfg.Generator.Seed),
		generator.WithMaxCount(cfg.Generator.MaxCount),
	}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		genOpts = append(genOpts, generator.WithObserver(m))
	}
	gen := generator.New(genOpts...)

	// 5. Start the HTTP server.
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.New(cfg, gen, m, logger, version),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-done
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
