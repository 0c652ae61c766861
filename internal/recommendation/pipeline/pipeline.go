// Package pipeline runs the profile to recommendation flow: validation,
// cache lookup, prompt composition, generation, merging and storage.
package pipeline

import (
	"context"
	"fmt"
	"time"

	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/common/metrics"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/cache"
	"automation-advisor/internal/recommendation/index"
	"automation-advisor/internal/recommendation/patterns"
	"automation-advisor/internal/recommendation/prompt"
	"automation-advisor/internal/recommendation/provider"

	"golang.org/x/sync/singleflight"
)

const DefaultTimeout = 120 * time.Second

// Indexer receives generated results for analytics.
type Indexer interface {
	Index(ctx context.Context, doc index.Document) error
}

// Pipeline is safe for concurrent use. Identical in-flight generations
// share one generator call.
type Pipeline struct {
	registry *provider.Registry
	cache    *cache.Controller
	library  *patterns.Library
	indexer  Indexer
	timeout  time.Duration
	logger   logger.Logger
	now      func() time.Time
	group    singleflight.Group
}

type Option func(*Pipeline)

func WithIndexer(i Indexer) Option {
	return func(p *Pipeline) { p.indexer = i }
}

// WithTimeout bounds each generator call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(registry *provider.Registry, controller *cache.Controller, log logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: registry,
		cache:    controller,
		library:  patterns.Default(),
		timeout:  DefaultTimeout,
		logger:   log.WithFields(map[string]interface{}{"component": "pipeline"}),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func validateProfile(profile *models.Profile) error {
	if profile == nil {
		return apperrors.NewInvalidInputError("profile is required", nil)
	}
	return profile.Validate()
}

// setupMessage explains a missing provider. ok is false for other errors.
func setupMessage(err error) (string, bool) {
	stdErr, ok := apperrors.As(err)
	if !ok || stdErr.Code != apperrors.ErrCodeProviderNotConfigured {
		return "", false
	}
	return "Configure an AI provider API key to generate recommendations (" + stdErr.Details + ")", true
}

func flightKey(key models.CacheKey, force bool) string {
	return fmt.Sprintf("%s|%s|%s|%s|%t", key.Kind, key.EntityID, key.Scenario, key.Provider, force)
}

// coalesce runs fn once for concurrent callers with the same key. The
// shared call is detached from the cancellation of whichever caller
// started it; each caller still stops waiting when its own ctx is done.
func (p *Pipeline) coalesce(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	detached := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// generate calls the generator under the pipeline deadline and records
// outcome metrics.
func (p *Pipeline) generate(ctx context.Context, gen provider.Generator, pr prompt.Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	raw, err := gen.Generate(ctx, pr)
	metrics.GenerationDuration.WithLabelValues(gen.Name(), string(pr.Kind)).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		if !apperrors.IsProviderInvocation(err) {
			err = apperrors.NewProviderInvocationError(gen.Name(), apperrors.CategoryUnavailable, err)
		}
		outcome = string(apperrors.CategoryOf(err))
	}
	metrics.GenerationRequests.WithLabelValues(gen.Name(), string(pr.Kind), outcome).Inc()

	if err != nil {
		p.logger.Error("Generation failed", map[string]interface{}{
			"provider": gen.Name(),
			"kind":     string(pr.Kind),
			"category": outcome,
			"error":    err.Error(),
		})
		return "", err
	}
	return raw, nil
}

func (p *Pipeline) checkPrompt(pr prompt.Prompt, profile *models.Profile) {
	for _, warning := range prompt.Validate(pr, profile) {
		p.logger.Warn("Prompt check failed", map[string]interface{}{
			"kind":    string(pr.Kind),
			"warning": warning,
		})
	}
}

func (p *Pipeline) recordFallbacks(kind models.CacheKind, entityID string, warnings []*apperrors.StandardError) {
	for _, w := range warnings {
		field, _ := w.Metadata["field"].(string)
		metrics.MergeFallbacks.WithLabelValues(string(kind), field).Inc()
		p.logger.Debug("Merge fallback applied", map[string]interface{}{
			"kind":     string(kind),
			"entityId": entityID,
			"details":  w.Details,
		})
	}
	if len(warnings) > 0 {
		p.logger.Info("Generator output completed by fallbacks", map[string]interface{}{
			"kind":      string(kind),
			"entityId":  entityID,
			"fallbacks": len(warnings),
		})
	}
}

func (p *Pipeline) index(ctx context.Context, doc index.Document) {
	if p.indexer == nil {
		return
	}
	if err := p.indexer.Index(ctx, doc); err != nil {
		p.logger.Warn("Failed to index recommendation", map[string]interface{}{
			"entityId": doc.EntityID,
			"kind":     doc.Kind,
			"error":    err.Error(),
		})
	}
}
