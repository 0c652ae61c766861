package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"automation-advisor/internal/common/metrics"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/cache"
	"automation-advisor/internal/recommendation/features"
	"automation-advisor/internal/recommendation/index"
	"automation-advisor/internal/recommendation/merger"
	"automation-advisor/internal/recommendation/patterns"
	"automation-advisor/internal/recommendation/prompt"
	"automation-advisor/internal/recommendation/provider"
)

// GenerateWorkflows returns cached workflows for the profile when they
// satisfy the request, otherwise generates, merges and stores new ones.
// A cached result under another provider is regenerated, not returned.
func (p *Pipeline) GenerateWorkflows(ctx context.Context, req WorkflowsRequest) (*WorkflowsResponse, error) {
	if err := validateProfile(req.Profile); err != nil {
		return nil, err
	}
	entityID := req.Profile.EntityID()
	key := models.CacheKey{EntityID: entityID, Kind: models.KindWorkflows, Provider: req.PreferredProvider}

	lookup := p.cache.Lookup(ctx, key, req.ForceRegenerate)
	if lookup.Status == cache.StatusHit {
		if resp, ok := p.cachedWorkflows(lookup.Entry); ok {
			return resp, nil
		}
	}
	if lookup.Status == cache.StatusMismatch {
		p.logger.Info("Cached workflows belong to another provider, regenerating", map[string]interface{}{
			"entityId":       entityID,
			"cachedProvider": lookup.CachedProvider,
			"requested":      req.PreferredProvider,
		})
	}

	gen, err := p.registry.Resolve(req.PreferredProvider)
	if err != nil {
		if msg, ok := setupMessage(err); ok {
			return &WorkflowsResponse{Workflows: []models.PersonalizedWorkflow{}, SetupRequired: true, SetupMessage: msg}, nil
		}
		return nil, err
	}

	storeKey := models.CacheKey{EntityID: entityID, Kind: models.KindWorkflows, Provider: gen.Name()}
	v, shared, err := p.coalesce(ctx, flightKey(storeKey, req.ForceRegenerate), func(ctx context.Context) (interface{}, error) {
		return p.generateWorkflows(ctx, req.Profile, gen, storeKey)
	})
	if shared {
		metrics.CoalescedRequests.WithLabelValues(string(models.KindWorkflows)).Inc()
	}
	if err != nil {
		return nil, err
	}
	resp := *v.(*WorkflowsResponse)
	return &resp, nil
}

func (p *Pipeline) cachedWorkflows(entry *models.CacheEntry) (*WorkflowsResponse, bool) {
	var set models.WorkflowSet
	if err := json.Unmarshal(entry.Payload, &set); err != nil {
		p.logger.Warn("Cached workflows are unreadable, regenerating", map[string]interface{}{
			"entityId": entry.Key.EntityID,
			"error":    err.Error(),
		})
		return nil, false
	}
	return &WorkflowsResponse{
		Workflows:   set.Workflows,
		Analysis:    set.Analysis,
		Cached:      true,
		Provider:    entry.Provider,
		GeneratedAt: entry.GeneratedAt,
	}, true
}

func (p *Pipeline) generateWorkflows(ctx context.Context, profile *models.Profile, gen provider.Generator, key models.CacheKey) (*WorkflowsResponse, error) {
	f := features.Extract(profile)
	candidates := patterns.Match(profile, p.library)

	references := make([]models.WorkflowPattern, 0, merger.MaxWorkflows)
	for _, c := range patterns.Top(candidates, merger.MaxWorkflows) {
		references = append(references, c.Pattern)
	}
	pr, err := prompt.ComposeWorkflows(f, references...)
	if err != nil {
		return nil, fmt.Errorf("compose workflows prompt: %w", err)
	}
	p.checkPrompt(pr, profile)

	raw, err := p.generate(ctx, gen, pr)
	if err != nil {
		return nil, err
	}

	result := merger.MergeWorkflows(raw, candidates, profile, f)
	p.recordFallbacks(models.KindWorkflows, key.EntityID, result.Warnings)

	set := models.WorkflowSet{
		Workflows:   result.Workflows,
		Analysis:    result.Analysis,
		GeneratedAt: p.now(),
	}
	p.store(ctx, key, set, set.GeneratedAt)
	p.index(ctx, index.WorkflowsDocument(profile, patterns.SizeBucket(profile.Company.EmployeeCount), gen.Name(), set))

	p.logger.Info("Workflows generated", map[string]interface{}{
		"entityId":     key.EntityID,
		"provider":     gen.Name(),
		"workflows":    len(set.Workflows),
		"fromPatterns": result.FromPatterns(),
	})

	return &WorkflowsResponse{
		Workflows:   set.Workflows,
		Analysis:    set.Analysis,
		Cached:      false,
		Provider:    gen.Name(),
		GeneratedAt: set.GeneratedAt,
	}, nil
}

// store writes a result to the cache. Failures are logged by the
// controller and never fail the request.
func (p *Pipeline) store(ctx context.Context, key models.CacheKey, v interface{}, generatedAt time.Time) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("Failed to encode recommendation for cache", map[string]interface{}{
			"entityId": key.EntityID,
			"error":    err.Error(),
		})
		return
	}
	_, _ = p.cache.Store(ctx, key, payload, generatedAt)
}
