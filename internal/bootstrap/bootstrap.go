// Package bootstrap assembles the recommendation pipeline from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"automation-advisor/internal/common/config"
	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/common/database"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/recommendation/cache"
	"automation-advisor/internal/recommendation/index"
	"automation-advisor/internal/recommendation/pipeline"
	"automation-advisor/internal/recommendation/provider"
)

// Options tune how long startup waits for backing services.
type Options struct {
	ReadyTimeout time.Duration
}

func (o Options) readyTimeout() time.Duration {
	if o.ReadyTimeout <= 0 {
		return 60 * time.Second
	}
	return o.ReadyTimeout
}

// Components is everything a transport needs to serve recommendations.
type Components struct {
	Pipeline *pipeline.Pipeline
	Registry *provider.Registry
	Cache    *cache.Controller
	Indexer  *index.Indexer

	checks  map[string]database.Pinger
	closers []func() error
	logger  logger.Logger
}

// Build connects the configured cache backend and index, creates the
// provider registry and wires the pipeline. On error everything opened so
// far is closed.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Components, error) {
	c := &Components{
		checks: make(map[string]database.Pinger),
		logger: log,
	}

	store, err := c.openStore(ctx, cfg, opts)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Cache = cache.NewController(store, log)

	if cfg.Index.Enabled {
		if err := c.openIndex(ctx, cfg, opts); err != nil {
			c.Close()
			return nil, err
		}
	}

	registry, err := provider.FromConfig(ctx, cfg, log)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create generation providers: %w", err)
	}
	c.Registry = registry

	pipelineOpts := []pipeline.Option{
		pipeline.WithTimeout(config.GetDuration(cfg.Generation.Timeout)),
	}
	if c.Indexer != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithIndexer(c.Indexer))
	}
	c.Pipeline = pipeline.New(registry, c.Cache, log, pipelineOpts...)
	return c, nil
}

func (c *Components) openStore(ctx context.Context, cfg *config.Config, opts Options) (cache.Store, error) {
	ttl := time.Duration(cfg.Cache.TTL) * time.Second

	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		rc, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, rc.Close)
		if err := c.waitReady(ctx, "redis", rc, opts); err != nil {
			return nil, err
		}
		return cache.NewRedisStore(rc.Client, ttl), nil

	case config.CacheBackendPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pg.Close)
		if err := c.waitReady(ctx, "postgres", pg, opts); err != nil {
			return nil, err
		}
		store := cache.NewPostgresStore(pg, ttl)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("create cache schema: %w", err)
		}
		return store, nil

	default:
		c.logger.Warn("Using in-memory recommendation cache; results are lost on restart", nil)
		return cache.NewMemoryStore(ttl), nil
	}
}

func (c *Components) openIndex(ctx context.Context, cfg *config.Config, opts Options) error {
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}
	if err := c.waitReady(ctx, "elasticsearch", es, opts); err != nil {
		return err
	}
	c.Indexer = index.NewIndexer(es.Client, cfg.Index.Name, c.logger)
	if err := c.Indexer.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("create index %s: %w", cfg.Index.Name, err)
	}
	return nil
}

func (c *Components) waitReady(ctx context.Context, name string, p database.Pinger, opts Options) error {
	err := database.WaitReady(ctx, p, opts.readyTimeout(), func(err error, next time.Duration) {
		c.logger.Warn("Backend not ready, retrying", map[string]interface{}{
			"backend":     name,
			"error":       err.Error(),
			"nextRetryIn": next.String(),
		})
	})
	if err != nil {
		return apperrors.NewDatabaseConnectionFailedError(fmt.Errorf("%s not ready: %w", name, err))
	}
	c.checks[name] = p
	c.logger.Info("Backend connected", map[string]interface{}{"backend": name})
	return nil
}

// Ready pings every connected backend and returns the failures by name.
func (c *Components) Ready(ctx context.Context) map[string]string {
	failures := make(map[string]string)
	for name, p := range c.checks {
		if err := p.Ping(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	return failures
}

// Close releases connections in reverse order of opening.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.logger.Warn("Close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	c.closers = nil
}
