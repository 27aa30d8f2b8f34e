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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smartstyle-cloud/styledex/internal/config"
	"github.com/smartstyle-cloud/styledex/internal/db"
	dbRedis "github.com/smartstyle-cloud/styledex/internal/db/redis"
	"github.com/smartstyle-cloud/styledex/internal/domain"
	logpkg "github.com/smartstyle-cloud/styledex/internal/logger"
	"github.com/smartstyle-cloud/styledex/internal/metrics"
	"github.com/smartstyle-cloud/styledex/internal/repository/csvcatalog"
	"github.com/smartstyle-cloud/styledex/internal/repository/embcache"
	chiTransport "github.com/smartstyle-cloud/styledex/internal/transport/chi"
	openaiEmb "github.com/smartstyle-cloud/styledex/internal/transport/openai"
	cataloguc "github.com/smartstyle-cloud/styledex/internal/usecase/catalog"
	healthuc "github.com/smartstyle-cloud/styledex/internal/usecase/health"
	insightsuc "github.com/smartstyle-cloud/styledex/internal/usecase/insights"
	recommenduc "github.com/smartstyle-cloud/styledex/internal/usecase/recommend"
	"github.com/smartstyle-cloud/styledex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting styledex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_source", catalogSource(cfg.Catalog)),
	)

	ctx := context.Background()

	// Optional embedding cache store
	var cacheStore db.Store
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := cacheStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	embedder := buildEmbedder(cfg, cacheStore, logger)

	rowSource := csvcatalog.New(csvcatalog.Config{
		URL:      cfg.Catalog.SourceURL,
		Path:     cfg.Catalog.Path,
		CacheDir: cfg.Catalog.CacheDir,
		Timeout:  time.Duration(cfg.Catalog.FetchTimeoutSec) * time.Second,
		Logger:   logger,
	})

	catalogSvc := cataloguc.New(rowSource, embedder, logger).
		WithMetrics(metrics.CatalogItems, metrics.IndexBuildDuration)

	if err := catalogSvc.Reload(ctx); err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	recommendSvc := recommenduc.New(catalogSvc).WithThresholds(recommenduc.Thresholds{
		SafeBetMinRating:  cfg.Recommend.SafeBetMinRating,
		HighRiskMinPrice:  cfg.Recommend.HighRiskMinPrice,
		HighRiskMaxRating: cfg.Recommend.HighRiskMaxRating,
	})
	insightsSvc := insightsuc.New(catalogSvc)

	var cachePinger healthuc.CachePinger
	if cacheStore != nil {
		cachePinger = cacheStore
	}
	healthSvc := healthuc.New(catalogSvc, cachePinger, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(catalogSvc, recommendSvc, insightsSvc, healthSvc, chiTransport.Limits{
		DefaultTopN: cfg.Recommend.DefaultTopN,
		MaxTopN:     cfg.Recommend.MaxTopN,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Handle("/metrics", promhttp.Handler())
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

// buildEmbedder assembles the decorator chain: OpenAI -> Cached.
// Takes the first configured vectorizer.
func buildEmbedder(cfg config.Config, cacheStore db.Store, logger *zap.Logger) domain.Embedder {
	var vecCfg config.VectorizerConfig
	for _, vc := range cfg.Embedding.Vectorizers {
		vecCfg = vc
		break
	}
	provCfg := cfg.Embedding.Providers[vecCfg.Provider]

	var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   vecCfg.Provider,
		Logger:     logger,
	})

	if cacheStore != nil {
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		embedder = embcache.New(embedder, cacheStore, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	logger.Info("Embedder created",
		zap.String("provider", vecCfg.Provider),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
		zap.Bool("cached", cacheStore != nil),
	)
	return embedder
}

func catalogSource(c config.CatalogConfig) string {
	if c.Path != "" {
		return c.Path
	}
	return c.SourceURL
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
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
						"code":    "internal_error",
						"message": "internal error",
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

			// Canonical log line, one per request
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
