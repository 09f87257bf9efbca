// Package app wires configuration into a ready-to-serve analysis pipeline.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/config"
	dbRedis "github.com/kailas-cloud/resumatch/internal/db/redis"
	"github.com/kailas-cloud/resumatch/internal/extract"
	"github.com/kailas-cloud/resumatch/internal/metrics"
	chiTransport "github.com/kailas-cloud/resumatch/internal/transport/chi"
	analysisuc "github.com/kailas-cloud/resumatch/internal/usecase/analysis"
	embeddinguc "github.com/kailas-cloud/resumatch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/resumatch/internal/usecase/health"
	"github.com/kailas-cloud/resumatch/internal/usecase/semantic"
)

// App is the assembled service.
type App struct {
	Analysis *analysisuc.Service
	Health   *healthuc.Service
	Embedder *embeddinguc.LazyEmbedder

	cfg    config.Config
	store  *dbRedis.Store
	logger *zap.Logger
}

// New builds the pipeline from cfg. When the cache is enabled it connects and
// waits for the store; with embedding.preload the provider is loaded eagerly.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterAnalysisMetrics()

	a := &App{cfg: cfg, logger: logger}

	var cache CacheConfig
	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Cache.Driver, err)
		}
		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err = store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("%s not ready: %w", cfg.Cache.Driver, err)
		}
		logger.Info("Connected to embedding cache",
			zap.String("driver", cfg.Cache.Driver),
			zap.Strings("addrs", cfg.Cache.Addrs),
		)
		a.store = store
		cache = CacheConfig{Store: store, TTL: time.Duration(cfg.Cache.TTLSec) * time.Second}
	}

	a.Embedder = BuildEmbedder(cfg.Embedding, cache, logger)
	if cfg.Embedding.Preload {
		if err := a.Embedder.Load(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("preload embedder: %w", err)
		}
	}

	a.Analysis = analysisuc.New(
		extract.New(logger),
		semantic.New(a.Embedder),
		cfg.Scoring.Policy(),
		logger,
	)

	// Pass a nil interface, not a typed nil pointer, when the cache is off.
	var pinger healthuc.CachePinger
	if a.store != nil {
		pinger = a.store
	}
	a.Health = healthuc.New(a.Embedder, pinger)

	return a, nil
}

// Handler returns the HTTP router over the assembled services.
func (a *App) Handler() http.Handler {
	server := chiTransport.NewServer(
		a.Analysis, a.Health, int64(a.cfg.HTTP.MaxUploadMB)<<20, a.logger,
	)
	return chiTransport.NewRouter(server, chiTransport.RouterConfig{
		CORSOrigins:        a.cfg.HTTP.CORSOrigins,
		RateLimitPerMinute: a.cfg.HTTP.RateLimitPerMinute,
	}, a.logger)
}

// Close releases the cache connection, if any.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
