package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/common/metrics"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/cache"
	"automation-advisor/internal/recommendation/features"
	"automation-advisor/internal/recommendation/index"
	"automation-advisor/internal/recommendation/merger"
	"automation-advisor/internal/recommendation/patterns"
	"automation-advisor/internal/recommendation/prompt"
	"automation-advisor/internal/recommendation/provider"
	"automation-advisor/internal/recommendation/scenario"
)

// GenerateTimeline returns a timeline for the requested scenario. An empty
// scenario accepts whatever is cached and generates balanced otherwise.
// A cached timeline for a different scenario is reported as a mismatch
// and left untouched; ForceRegenerate generates the requested one.
func (p *Pipeline) GenerateTimeline(ctx context.Context, req TimelineRequest) (*TimelineResponse, error) {
	if err := validateProfile(req.Profile); err != nil {
		return nil, err
	}
	entityID := req.Profile.EntityID()

	var requested models.ScenarioType
	base := TimelineResponse{}
	if strings.TrimSpace(req.ScenarioType) != "" {
		res := scenario.Resolve(req.ScenarioType)
		requested = res.Corrected
		base.ScenarioCorrected = res.WasCorrected()
		base.ScenarioError = res.Error
	}

	key := models.CacheKey{EntityID: entityID, Kind: models.KindTimeline, Scenario: requested, Provider: req.Provider}
	lookup := p.cache.Lookup(ctx, key, req.ForceRegenerate)
	switch lookup.Status {
	case cache.StatusHit:
		if resp, ok := p.cachedTimeline(lookup.Entry, base); ok {
			return resp, nil
		}
	case cache.StatusMismatch:
		if entry := p.earlierScenario(ctx, entityID, requested, req.Provider); entry != nil {
			if resp, ok := p.cachedTimeline(entry, base); ok {
				return resp, nil
			}
		}
		signal := apperrors.NewCacheMismatch(string(lookup.CachedScenario), lookup.CachedProvider)
		if requested != "" && lookup.CachedScenario != requested {
			p.logger.Info("Cached timeline belongs to another scenario", map[string]interface{}{
				"entityId":  entityID,
				"code":      signal.Code,
				"details":   signal.Details,
				"requested": requested,
			})
			resp := base
			resp.ScenarioType = requested
			resp.ScenarioMismatch = true
			resp.CachedScenario = lookup.CachedScenario
			return &resp, nil
		}
		p.logger.Info("Cached timeline belongs to another provider, regenerating", map[string]interface{}{
			"entityId":  entityID,
			"code":      signal.Code,
			"details":   signal.Details,
			"requested": req.Provider,
		})
	}

	if requested == "" {
		requested = models.ScenarioBalanced
	}
	base.ScenarioType = requested

	gen, err := p.registry.Resolve(req.Provider)
	if err != nil {
		if msg, ok := setupMessage(err); ok {
			resp := base
			resp.SetupRequired = true
			resp.SetupMessage = msg
			return &resp, nil
		}
		return nil, err
	}

	storeKey := models.CacheKey{EntityID: entityID, Kind: models.KindTimeline, Scenario: requested, Provider: gen.Name()}
	v, shared, err := p.coalesce(ctx, flightKey(storeKey, req.ForceRegenerate), func(ctx context.Context) (interface{}, error) {
		return p.generateTimeline(ctx, req.Profile, gen, storeKey)
	})
	if shared {
		metrics.CoalescedRequests.WithLabelValues(string(models.KindTimeline)).Inc()
	}
	if err != nil {
		return nil, err
	}

	timeline := v.(*models.Timeline)
	resp := base
	resp.Timeline = timeline
	resp.GeneratedAt = timeline.GeneratedAt
	resp.Provider = gen.Name()
	return &resp, nil
}

// earlierScenario finds a timeline generated for the scenario before the
// entity's latest document was replaced by another scenario.
func (p *Pipeline) earlierScenario(ctx context.Context, entityID string, requested models.ScenarioType, providerName string) *models.CacheEntry {
	if requested == "" {
		return nil
	}
	entry, err := p.cache.Latest(ctx, entityID, models.KindTimeline, requested)
	if err != nil || entry == nil {
		return nil
	}
	if entry.Scenario != requested || (providerName != "" && entry.Provider != providerName) {
		return nil
	}
	return entry
}

func (p *Pipeline) cachedTimeline(entry *models.CacheEntry, base TimelineResponse) (*TimelineResponse, bool) {
	var t models.Timeline
	if err := json.Unmarshal(entry.Payload, &t); err != nil {
		p.logger.Warn("Cached timeline is unreadable, regenerating", map[string]interface{}{
			"entityId": entry.Key.EntityID,
			"error":    err.Error(),
		})
		return nil, false
	}
	resp := base
	resp.Timeline = &t
	resp.Cached = true
	resp.GeneratedAt = entry.GeneratedAt
	resp.ScenarioType = entry.Scenario
	resp.Provider = entry.Provider
	return &resp, true
}

func (p *Pipeline) generateTimeline(ctx context.Context, profile *models.Profile, gen provider.Generator, key models.CacheKey) (*models.Timeline, error) {
	f := features.Extract(profile)
	cfg := scenario.Config(key.Scenario)

	pr, err := prompt.ComposeTimeline(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("compose timeline prompt: %w", err)
	}
	p.checkPrompt(pr, profile)

	raw, err := p.generate(ctx, gen, pr)
	if err != nil {
		return nil, err
	}

	result := merger.MergeTimeline(raw, cfg, f)
	p.recordFallbacks(models.KindTimeline, key.EntityID, result.Warnings)

	timeline := result.Timeline
	timeline.GeneratedAt = p.now()
	p.store(ctx, key, timeline, timeline.GeneratedAt)
	p.index(ctx, index.TimelineDocument(profile, patterns.SizeBucket(profile.Company.EmployeeCount), gen.Name(), f.Completeness.Score, timeline))

	p.logger.Info("Timeline generated", map[string]interface{}{
		"entityId": key.EntityID,
		"provider": gen.Name(),
		"scenario": string(key.Scenario),
		"phases":   len(timeline.Phases),
		"months":   timeline.TotalDurationMonths,
	})
	return &timeline, nil
}
