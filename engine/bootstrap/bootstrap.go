// Package bootstrap builds a pipeline.Service and its optional integrations
// (Redis cache, NATS events, Neo4j sink) from configuration. Both binaries
// share it.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/iconsports/demandscope/engine/costguard"
	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/engine/fetcher"
	"github.com/iconsports/demandscope/engine/graph"
	"github.com/iconsports/demandscope/engine/pipeline"
	"github.com/iconsports/demandscope/engine/scoring"
	"github.com/iconsports/demandscope/engine/store"
	"github.com/iconsports/demandscope/pkg/config"
	"github.com/iconsports/demandscope/pkg/dataforseo"
	"github.com/iconsports/demandscope/pkg/fn"
	"github.com/iconsports/demandscope/pkg/keycache"
	"github.com/iconsports/demandscope/pkg/metrics"
	"github.com/iconsports/demandscope/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

// App is a wired service plus the resources it holds open.
type App struct {
	Config  *config.Config
	Service *pipeline.Service
	Store   *store.FileStore
	Client  *dataforseo.Client
	Metrics *metrics.Metrics
	// NATS is nil when no NATS URL is configured or the connection failed.
	NATS *nats.Conn

	closers []func(context.Context) error
}

// Build wires an App. Optional integrations that fail to connect are logged
// and skipped.
func Build(ctx context.Context, cfg *config.Config, name string, logger *slog.Logger, m *metrics.Metrics) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Metrics: m}

	a.Client = dataforseo.New(dataforseo.Config{
		Username:    cfg.DataForSEO.Username,
		Password:    cfg.DataForSEO.Password,
		Sandbox:     cfg.DataForSEO.Sandbox,
		BaseURL:     cfg.DataForSEO.BaseURL,
		Timeout:     cfg.DataForSEO.Timeout,
		MinInterval: cfg.Run.Delay,
	})
	if !cfg.HasCredentials() {
		logger.Warn("dataforseo credentials not configured; provider calls will fail")
	}

	var provider fetcher.Provider = fetcher.DataForSEO{Client: a.Client}
	if cfg.Run.Retries > 0 {
		provider = &fetcher.RetryingProvider{
			Provider: provider,
			Opts: fn.RetryOpts{
				MaxAttempts: cfg.Run.Retries + 1,
				InitialWait: 2 * time.Second,
				MaxWait:     30 * time.Second,
				Jitter:      true,
			},
			Logger: logger,
		}
	}
	if cfg.Run.BreakerThreshold > 0 {
		provider = fetcher.NewBreakingProvider(provider, cfg.Run.BreakerThreshold, cfg.Run.BreakerCooldown, logger)
	}
	if cfg.Redis.URL != "" {
		backend, err := keycache.Dial(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, keyword cache disabled", "error", err)
		} else {
			a.closers = append(a.closers, func(context.Context) error { return backend.Close() })
			provider = &fetcher.Cached{
				Next:    provider,
				Mode:    a.Client.Mode(),
				Cache:   keycache.New[[]domain.KeywordRecord](backend, cfg.Redis.TTL),
				Logger:  logger,
				Metrics: m,
			}
			logger.Info("keyword cache enabled", "ttl", cfg.Redis.TTL)
		}
	}

	a.Store = store.NewFileStore(cfg.Storage.DataDir, logger)
	m.WatchStore(a.Store, logger)

	opts := pipeline.Options{
		Provider: provider,
		Store:    a.Store,
		Fetcher: fetcher.New(fetcher.Config{
			LanguageCode: cfg.Run.LanguageCode,
			Logger:       logger,
			Metrics:      m,
		}),
		Scorer: scoring.Scorer{
			VolumeNorm: cfg.Scoring.VolumeNorm,
			MaxMarkets: cfg.Scoring.MaxMarkets,
		},
		Guard: costguard.Config{
			AllowRealMoney: cfg.Cost.AllowRealMoney,
			MaxAllowedCost: cfg.Cost.MaxAllowedCost,
		},
		Live:                  a.Client.Live(),
		Delay:                 cfg.Run.Delay,
		MaxPerBatch:           cfg.Run.MaxPerBatch,
		CostPerBatch:          cfg.Run.CostPerBatch,
		SignificanceThreshold: cfg.Scoring.SignificanceThreshold,
		LanguageCode:          cfg.Run.LanguageCode,
		Logger:                logger,
		Metrics:               m,
	}

	if cfg.NATS.URL != "" {
		nc, err := natsutil.Connect(cfg.NATS.URL, name, logger)
		if err != nil {
			logger.Warn("nats unavailable, run events disabled", "error", err)
		} else {
			a.NATS = nc
			a.closers = append(a.closers, func(context.Context) error { return nc.Drain() })
			opts.Publisher = natsutil.NewPublisher[pipeline.RunCompleted](nc, pipeline.EventSubject)
		}
	}

	if cfg.Neo4j.URL != "" {
		driver, err := graph.Dial(ctx, cfg.Neo4j.URL, cfg.Neo4j.User, cfg.Neo4j.Pass)
		if err != nil {
			logger.Warn("neo4j unavailable, graph sink disabled", "error", err)
		} else {
			a.closers = append(a.closers, driver.Close)
			sink := graph.NewSink(driver, cfg.Neo4j.Database, logger)
			if err := sink.EnsureSchema(ctx); err != nil {
				logger.Warn("neo4j schema setup failed", "error", err)
			}
			opts.Sink = sink
		}
	}

	svc, err := pipeline.New(opts)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Service = svc
	logger.Info("pipeline ready",
		"api_mode", svc.APIMode(),
		"data_dir", cfg.Storage.DataDir,
		"delay", cfg.Run.Delay,
		"max_per_batch", cfg.Run.MaxPerBatch)
	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
