// internal/workers/recommendation/collect-behavior-signals/handler.go
package collectbehaviorsignals

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"grant-workers/internal/common/camunda"
	"grant-workers/internal/common/errors"
	"grant-workers/internal/common/logger"
	"grant-workers/internal/common/metrics"
	"grant-workers/internal/common/validation"
	"grant-workers/internal/recommendation/behavior"
)

const TaskType = "collect-behavior-signals"

type Handler struct {
	config     *Config
	source     behavior.Source
	schema     *validation.Schema
	now        func() time.Time
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, source behavior.Source, schema *validation.Schema, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		source:     source,
		schema:     schema,
		now:        time.Now,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeJob(job, h.schema, &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output, h.logger); err != nil {
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

// execute never fails on history reads; a failed source yields empty
// signals flagged as degraded.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}

	window := h.config.Window
	if input.WindowDays > 0 {
		window = time.Duration(input.WindowDays) * 24 * time.Hour
	}

	collector := behavior.NewCollector(h.source, h.logger,
		behavior.WithWindow(window),
		behavior.WithCollectorClock(h.now),
	)
	signals, err := collector.Collect(ctx, input.UserID)

	output := &Output{
		CategoryPreferences:       signals.CategoryPreferences,
		OrganizationPreferences:   signals.OrganizationPreferences,
		InteractedAnnouncementIDs: signals.InteractedIDs(),
	}
	if err != nil {
		output.Degraded = true
		metrics.BehaviorDegraded.WithLabelValues(TaskType).Inc()
		stdErr := errors.NewBehaviorDegradedError(input.UserID, err)
		h.logger.Warn("returning empty behavior signals", map[string]interface{}{
			"userId":    input.UserID,
			"errorCode": stdErr.Code,
			"details":   stdErr.Details,
		})
	}

	h.logger.Info("behavior signals collected", map[string]interface{}{
		"userId":        input.UserID,
		"windowDays":    int(window.Hours() / 24),
		"categories":    len(output.CategoryPreferences),
		"organizations": len(output.OrganizationPreferences),
		"interacted":    len(output.InteractedAnnouncementIDs),
		"degraded":      output.Degraded,
	})
	return output, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
