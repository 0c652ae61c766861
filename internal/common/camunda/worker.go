// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"automation-advisor/internal/common/config"
	"automation-advisor/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Defaults applied when a worker section leaves a value unset.
const (
	DefaultMaxJobsActive = 5
	DefaultJobTimeout    = 3 * time.Minute
)

// JobRecorder receives one call per handled job.
type JobRecorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// StartWorker opens a job worker for taskType. The job timeout given to the
// broker comes from cfg and must outlast the handler's own deadline.
func StartWorker(
	client zbc.Client,
	taskType string,
	cfg config.WorkerConfig,
	handler worker.JobHandler,
	recorder JobRecorder,
	log logger.Logger,
) *CamundaWorker {
	maxJobs := cfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobsActive
	}
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}

	l := log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, recorder)).
		MaxJobsActive(maxJobs).
		Timeout(timeout).
		Open()

	l.Info("worker started", map[string]interface{}{
		"maxJobsActive": maxJobs,
		"timeout":       timeout.String(),
	})

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   l,
		taskType: taskType,
	}
}

func instrument(taskType string, handler worker.JobHandler, recorder JobRecorder) worker.JobHandler {
	if recorder == nil {
		return handler
	}
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		handler(client, job)
		recorder.RecordJob(context.Background(), taskType, "handled", time.Since(start))
	}
}

// Stop closes the worker and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
