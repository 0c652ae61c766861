// internal/workers/recommendation/load-cached-recommendation/handler.go
package loadcachedrecommendation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"automation-advisor/internal/common/errors"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/common/metrics"
	"automation-advisor/internal/common/validation"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/pipeline"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "load-cached-recommendation"
)

type CacheLoader interface {
	LoadCached(ctx context.Context, entityID string, kind models.CacheKind, scenarioType string) (*pipeline.CachedResponse, error)
}

type Handler struct {
	config     *Config
	loader     CacheLoader
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, loader CacheLoader, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		loader:     loader,
		errHandler: errors.NewErrorHandler(l),
		logger:     l,
	}
}

func inputSchema() validation.JSONSchema {
	minOne := 1
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"entityId":     {Type: "string", MinLength: &minOne},
			"profile":      {Type: "object"},
			"kind":         {Type: "string", Enum: []string{string(models.KindWorkflows), string(models.KindTimeline)}},
			"scenarioType": {Type: "string"},
		},
		Required:             []string{"kind"},
		AdditionalProperties: true,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse job variables: %v", err), err)
	}

	result := validation.ValidateInput(variables, inputSchema())
	if !result.Valid {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("validation errors: %v", result.GetErrorMessages()), nil)
	}

	input := &Input{Kind: models.CacheKind(variables["kind"].(string))}
	if id, ok := variables["entityId"].(string); ok {
		input.EntityID = strings.TrimSpace(id)
	}
	if s, ok := variables["scenarioType"].(string); ok {
		input.ScenarioType = s
	}
	if input.EntityID == "" {
		raw, ok := variables["profile"].(map[string]interface{})
		if !ok {
			return nil, errors.NewInvalidInputError("entityId or profile is required", nil)
		}
		profile, err := models.DecodeProfileMap(raw)
		if err != nil {
			return nil, err
		}
		input.Profile = profile
	}
	return input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	entityID := input.EntityID
	if entityID == "" && input.Profile != nil {
		entityID = input.Profile.EntityID()
	}

	resp, err := h.loader.LoadCached(ctx, entityID, input.Kind, input.ScenarioType)
	if err != nil {
		return nil, err
	}

	output := &Output{CacheFound: resp.Found, CacheKind: input.Kind}
	if !resp.Found {
		h.logger.Info("no cached recommendation", map[string]interface{}{
			"entityId": entityID,
			"kind":     string(input.Kind),
		})
		if h.config.FailOnMiss {
			return nil, errors.NewCacheNotFoundError(entityID, string(input.Kind))
		}
		return output, nil
	}

	output.CachedScenario = resp.ScenarioType
	output.CachedProvider = resp.Provider
	if !resp.GeneratedAt.IsZero() {
		at := resp.GeneratedAt
		output.CacheGeneratedAt = &at
	}
	if resp.Workflows != nil {
		output.Workflows = resp.Workflows.Workflows
		analysis := resp.Workflows.Analysis
		output.WorkflowAnalysis = &analysis
	}
	output.Timeline = resp.Timeline

	h.logger.Info("cached recommendation loaded", map[string]interface{}{
		"entityId": entityID,
		"kind":     string(input.Kind),
		"scenario": string(resp.ScenarioType),
		"provider": resp.Provider,
	})
	return output, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := errors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
