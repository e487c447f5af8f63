package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/relbench/internal/bootstrap"
	"github.com/kailas-cloud/relbench/internal/config"
	logpkg "github.com/kailas-cloud/relbench/internal/logger"
	"github.com/kailas-cloud/relbench/internal/metrics"
	corpusrepo "github.com/kailas-cloud/relbench/internal/repository/corpus"
	reportrepo "github.com/kailas-cloud/relbench/internal/repository/report"
	chiTransport "github.com/kailas-cloud/relbench/internal/transport/chi"
	corpusuc "github.com/kailas-cloud/relbench/internal/usecase/corpus"
	healthuc "github.com/kailas-cloud/relbench/internal/usecase/health"
	"github.com/kailas-cloud/relbench/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting relbench API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()
	store, err := bootstrap.NewStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	// Register harness metrics explicitly (no init())
	metrics.RegisterHarnessMetrics()

	harness, err := bootstrap.Harness(&cfg, logger, metrics.NewRecorder())
	if err != nil {
		logger.Fatal("Failed to build comparison harness", zap.Error(err))
	}
	logger.Info("Algorithms registered", zap.Strings("algorithms", harness.Algorithms()))

	corpusSvc := corpusuc.New(corpusrepo.New(store, cfg.Storage.KeyPrefix)).WithLogger(logger)
	reports := reportrepo.New(store, cfg.Storage.KeyPrefix, cfg.ReportTTL())
	healthSvc := healthuc.New(store, harness)

	server := chiTransport.NewServer(harness, corpusSvc, reports, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
