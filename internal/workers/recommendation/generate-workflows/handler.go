// internal/workers/recommendation/generate-workflows/handler.go
package generateworkflows

import (
	"context"
	"fmt"
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
	TaskType = "generate-workflows"
)

// WorkflowGenerator is the part of the pipeline this worker drives.
type WorkflowGenerator interface {
	GenerateWorkflows(ctx context.Context, req pipeline.WorkflowsRequest) (*pipeline.WorkflowsResponse, error)
}

type Handler struct {
	config     *Config
	generator  WorkflowGenerator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, generator WorkflowGenerator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		generator:  generator,
		errHandler: errors.NewErrorHandler(l),
		logger:     l,
	}
}

func inputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"profile":           {Type: "object", Required: []string{"company"}},
			"preferredProvider": {Type: "string", Enum: append([]string{""}, models.Providers...), CaseInsensitive: true},
			"forceRegenerate":   {Type: "boolean"},
		},
		Required:             []string{"profile"},
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

	profile, err := models.DecodeProfileMap(variables["profile"].(map[string]interface{}))
	if err != nil {
		return nil, err
	}

	input := &Input{Profile: profile}
	if p, ok := variables["preferredProvider"].(string); ok {
		input.PreferredProvider = p
	}
	if f, ok := variables["forceRegenerate"].(bool); ok {
		input.ForceRegenerate = f
	}
	return input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	resp, err := h.generator.GenerateWorkflows(ctx, pipeline.WorkflowsRequest{
		Profile:           input.Profile,
		PreferredProvider: input.PreferredProvider,
		ForceRegenerate:   input.ForceRegenerate,
	})
	if err != nil {
		return nil, err
	}

	output := &Output{
		Workflows:        resp.Workflows,
		WorkflowAnalysis: resp.Analysis,
		WorkflowsCached:  resp.Cached,
		WorkflowProvider: resp.Provider,
		SetupRequired:    resp.SetupRequired,
		SetupMessage:     resp.SetupMessage,
	}
	if output.Workflows == nil {
		output.Workflows = []models.PersonalizedWorkflow{}
	}
	if !resp.GeneratedAt.IsZero() {
		at := resp.GeneratedAt
		output.WorkflowsGeneratedAt = &at
	}

	h.logger.Info("workflows ready", map[string]interface{}{
		"company":       input.Profile.Company.Name,
		"workflowCount": len(output.Workflows),
		"cached":        output.WorkflowsCached,
		"provider":      output.WorkflowProvider,
		"setupRequired": output.SetupRequired,
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
