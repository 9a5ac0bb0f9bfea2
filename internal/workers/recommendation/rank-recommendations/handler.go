// internal/workers/recommendation/rank-recommendations/handler.go
package rankrecommendations

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"grant-workers/internal/common/camunda"
	"grant-workers/internal/common/config"
	"grant-workers/internal/common/errors"
	"grant-workers/internal/common/logger"
	"grant-workers/internal/common/metrics"
	"grant-workers/internal/common/observability"
	"grant-workers/internal/common/validation"
	"grant-workers/internal/models"
	"grant-workers/internal/recommendation/ranker"
	"grant-workers/internal/store"
)

const TaskType = "rank-recommendations"

type CompanyReader interface {
	Get(ctx context.Context, id string) (*models.CompanyProfile, error)
}

type CandidateSource interface {
	ActiveCandidates(ctx context.Context, today time.Time, limit int) ([]*models.Announcement, error)
	ByIDs(ctx context.Context, ids []string) ([]*models.Announcement, error)
}

type SignalCollector interface {
	Collect(ctx context.Context, userID string) (*models.BehaviorSignals, error)
}

// Dependencies wires the handler. Behavior, Schema and Observability are
// optional.
type Dependencies struct {
	Companies     CompanyReader
	Candidates    CandidateSource
	Behavior      SignalCollector
	Ranker        *ranker.Ranker
	Schema        *validation.Schema
	Observability *observability.Observability
}

type Handler struct {
	config     *Config
	deps       Dependencies
	now        func() time.Time
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		deps:       deps,
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
	if err := camunda.DecodeJob(job, h.deps.Schema, &input); err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output, h.logger); err != nil {
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.deps.Observability.RecordJobProcessed(ctx, TaskType, "completed")
	h.deps.Observability.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
	h.deps.Observability.RecordJobProcessed(ctx, TaskType, "failed")
	h.deps.Observability.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := h.logger.WithFields(map[string]interface{}{"runId": runID})

	company, err := h.resolveCompany(ctx, input)
	if err != nil {
		return nil, err
	}
	if result := validation.ValidateStruct(company); !result.Valid {
		return nil, errors.NewValidationFailedError("company: " + result.Summary())
	}

	candidates, err := h.loadCandidates(ctx, input.AnnouncementIDs)
	if err != nil {
		return nil, err
	}

	var signals *models.BehaviorSignals
	applied, degraded := false, false
	if input.UserID != "" && h.deps.Behavior != nil {
		var collectErr error
		signals, collectErr = h.deps.Behavior.Collect(ctx, input.UserID)
		if collectErr != nil {
			degraded = true
			metrics.BehaviorDegraded.WithLabelValues(TaskType).Inc()
			stdErr := errors.NewBehaviorDegradedError(input.UserID, collectErr)
			log.Warn("ranking on eligibility alone", map[string]interface{}{
				"errorCode": stdErr.Code,
				"details":   stdErr.Details,
			})
		} else {
			applied = true
		}
		if signals == nil {
			signals = models.NewBehaviorSignals()
		}
	}

	result, err := h.deps.Ranker.Rank(ctx, company, candidates, signals, &ranker.Options{
		MinScore: input.MinScore.Ptr(),
		Limit:    int(input.Limit),
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewQueryTimeoutError("ranking")
		}
		return nil, errors.NewInternalError(err)
	}

	recordOutcomes(result.Stats)
	metrics.RecommendationsReturned.WithLabelValues(TaskType).Observe(float64(result.Stats.Returned))
	scores := make([]int, len(result.Recommendations))
	for i, r := range result.Recommendations {
		scores[i] = r.Score
	}
	h.deps.Observability.RecordScores(ctx, TaskType, scores)

	elapsed := time.Since(start)
	fields := map[string]interface{}{
		"companyId":       company.ID,
		"userId":          input.UserID,
		"totalCandidates": result.Stats.Candidates,
		"evaluated":       result.Stats.Scored,
		"returned":        result.Stats.Returned,
		"behaviorApplied": applied,
		"durationMs":      elapsed.Milliseconds(),
	}
	if h.config.SlowThreshold > 0 && elapsed > h.config.SlowThreshold {
		log.Warn("slow recommendation run", fields)
	} else {
		log.Info("recommendations ranked", fields)
	}

	return &Output{
		RunID:            runID,
		Recommendations:  result.Recommendations,
		Stats:            result.Stats,
		BehaviorApplied:  applied,
		BehaviorDegraded: degraded,
		CandidateSource:  h.config.CandidateSource,
	}, nil
}

func (h *Handler) resolveCompany(ctx context.Context, input *Input) (*models.CompanyProfile, error) {
	if input.Company != nil {
		company := *input.Company
		if company.ID == "" {
			company.ID = input.CompanyID
		}
		return &company, nil
	}
	if input.CompanyID == "" {
		return nil, errors.NewInvalidInputError("companyId or company is required")
	}

	company, err := h.deps.Companies.Get(ctx, input.CompanyID)
	switch {
	case err == nil:
		return company, nil
	case stderrors.Is(err, store.ErrCompanyNotFound):
		return nil, errors.NewCompanyNotFoundError(input.CompanyID)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.NewQueryTimeoutError("company")
	default:
		return nil, errors.NewCompanyLookupError(input.CompanyID, err)
	}
}

func (h *Handler) loadCandidates(ctx context.Context, ids []string) ([]*models.Announcement, error) {
	var (
		candidates []*models.Announcement
		err        error
	)
	if len(ids) > 0 {
		candidates, err = h.deps.Candidates.ByIDs(ctx, ids)
	} else {
		candidates, err = h.deps.Candidates.ActiveCandidates(ctx, h.now(), h.config.CandidateLimit)
	}
	if err == nil {
		return candidates, nil
	}

	search := h.config.CandidateSource == config.CandidateSourceElasticsearch
	timedOut := stderrors.Is(err, context.DeadlineExceeded)
	switch {
	case search && timedOut:
		return nil, errors.NewSearchTimeoutError("candidates")
	case search:
		return nil, errors.NewSearchQueryFailedError("candidates", err)
	case timedOut:
		return nil, errors.NewQueryTimeoutError("candidates")
	default:
		return nil, errors.NewCandidateQueryError(h.config.CandidateSource, err)
	}
}

func recordOutcomes(stats ranker.Stats) {
	counts := map[models.OutcomeStatus]int{
		models.OutcomeScored:      stats.Scored,
		models.OutcomeExcluded:    stats.Excluded,
		models.OutcomeNotScorable: stats.NotScorable,
		models.OutcomeRepeat:      stats.Repeats,
	}
	for status, n := range counts {
		if n > 0 {
			metrics.CandidatesEvaluated.WithLabelValues(TaskType, string(status)).Add(float64(n))
		}
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
