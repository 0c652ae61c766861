package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/scenario"
)

// LoadCached returns the newest stored result for an entity without
// generating anything. scenarioType narrows timeline lookups and is
// ignored for workflows.
func (p *Pipeline) LoadCached(ctx context.Context, entityID string, kind models.CacheKind, scenarioType string) (*CachedResponse, error) {
	if strings.TrimSpace(entityID) == "" {
		return nil, apperrors.NewInvalidInputError("entityId is required", nil)
	}
	if kind != models.KindWorkflows && kind != models.KindTimeline {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("unknown kind %q", kind), nil)
	}

	var requested models.ScenarioType
	if kind == models.KindTimeline && strings.TrimSpace(scenarioType) != "" {
		requested = scenario.Resolve(scenarioType).Corrected
	}

	entry, err := p.cache.Latest(ctx, entityID, kind, requested)
	if err != nil {
		p.logger.Warn("Cache read failed", map[string]interface{}{
			"entityId": entityID,
			"kind":     string(kind),
			"error":    err.Error(),
		})
		return &CachedResponse{Found: false, Kind: kind}, nil
	}
	if entry == nil {
		return &CachedResponse{Found: false, Kind: kind}, nil
	}

	resp := &CachedResponse{
		Found:        true,
		Kind:         kind,
		Cached:       true,
		ScenarioType: entry.Scenario,
		Provider:     entry.Provider,
		GeneratedAt:  entry.GeneratedAt,
	}
	switch kind {
	case models.KindWorkflows:
		var set models.WorkflowSet
		if err := json.Unmarshal(entry.Payload, &set); err != nil {
			return nil, apperrors.NewInternalError("cached workflows are unreadable", err)
		}
		resp.Workflows = &set
	case models.KindTimeline:
		var t models.Timeline
		if err := json.Unmarshal(entry.Payload, &t); err != nil {
			return nil, apperrors.NewInternalError("cached timeline is unreadable", err)
		}
		resp.Timeline = &t
	}
	return resp, nil
}
