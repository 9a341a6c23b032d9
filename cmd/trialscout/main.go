package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trialscout/internal/config"
	dbRedis "github.com/kailas-cloud/trialscout/internal/db/redis"
	logpkg "github.com/kailas-cloud/trialscout/internal/logger"
	"github.com/kailas-cloud/trialscout/internal/metrics"
	investigatorrepo "github.com/kailas-cloud/trialscout/internal/repository/investigator"
	"github.com/kailas-cloud/trialscout/internal/repository/metacache"
	zipcoderepo "github.com/kailas-cloud/trialscout/internal/repository/zipcode"
	chiTransport "github.com/kailas-cloud/trialscout/internal/transport/chi"
	"github.com/kailas-cloud/trialscout/internal/transport/registry"
	healthuc "github.com/kailas-cloud/trialscout/internal/usecase/health"
	metadatauc "github.com/kailas-cloud/trialscout/internal/usecase/metadata"
	searchuc "github.com/kailas-cloud/trialscout/internal/usecase/search"
	"github.com/kailas-cloud/trialscout/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting trialscout API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("registry_url", cfg.Registry.BaseURL),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	ctx := context.Background()

	// Postgres pool for the read-only investigator and zip-code tables
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Invalid database DSN", zap.Error(err))
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		cancelPing()
		logger.Fatal("Database not ready", zap.Error(err))
	}
	cancelPing()
	logger.Info("Connected to database")

	// Redis store backing the trial-metadata cache
	cacheStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer cacheStore.Close()

	if err := cacheStore.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache not ready", zap.Error(err))
	}
	logger.Info("Connected to cache")

	// Register registry metrics explicitly (no init())
	metrics.RegisterRegistryMetrics()

	// Repositories
	zipRepo := zipcoderepo.New(pool)
	invRepo := investigatorrepo.New(pool)

	// Trials registry gateway wrapped in the metadata cache — explicit cache
	// object passed by reference, keyed by the sorted identifier set.
	registryClient := registry.NewClient(&registry.Config{
		BaseURL: cfg.Registry.BaseURL,
		Timeout: time.Duration(cfg.Registry.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	cachedFetcher := metacache.New(
		registryClient,
		cacheStore,
		time.Duration(cfg.Cache.MetadataTTLSec)*time.Second,
		metrics.MetadataCacheTotal,
		logger,
	)

	// Use case services
	searchSvc := searchuc.New(zipRepo, invRepo, cachedFetcher, logger).
		WithPageSize(cfg.Search.PageSize)
	sessions := searchuc.NewRegistry(searchSvc)
	metadataSvc := metadatauc.New(cachedFetcher)
	healthSvc := healthuc.New(pool, cacheStore)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, sessions, metadataSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
