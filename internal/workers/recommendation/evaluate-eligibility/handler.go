// internal/workers/recommendation/evaluate-eligibility/handler.go
package evaluateeligibility

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
	"grant-workers/internal/models"
	"grant-workers/internal/recommendation/eligibility"
	"grant-workers/internal/recommendation/ranker"
)

const TaskType = "evaluate-eligibility"

type Handler struct {
	config     *Config
	evaluator  *eligibility.Evaluator
	schema     *validation.Schema
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, evaluator *eligibility.Evaluator, schema *validation.Schema, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		evaluator:  evaluator,
		schema:     schema,
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
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output, h.logger); err != nil {
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewInternalError(err)
	}
	if result := validation.ValidateStruct(input.Company); !result.Valid {
		return nil, errors.NewValidationFailedError("company: " + result.Summary())
	}
	if result := validation.ValidateStruct(input.Announcement); !result.Valid {
		return nil, errors.NewValidationFailedError("announcement: " + result.Summary())
	}

	outcome := h.evaluator.Evaluate(&input.Company, &input.Announcement)
	metrics.CandidatesEvaluated.WithLabelValues(TaskType, string(outcome.Status)).Inc()

	output := &Output{
		Status:          outcome.Status,
		Reason:          outcome.Reason,
		MatchedCriteria: []models.MatchedCriterion{},
	}
	if outcome.IsScored() {
		grade := ranker.GradeFor(outcome.Total())
		breakdown := outcome.Breakdown
		output.Score = outcome.Total()
		output.Grade = &grade
		output.ScoreBreakdown = &breakdown
		output.MatchedCriteria = outcome.Criteria
	}

	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"companyId":      input.Company.ID,
		"announcementId": input.Announcement.ID,
		"status":         outcome.Status,
		"score":          output.Score,
	})
	return output, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
