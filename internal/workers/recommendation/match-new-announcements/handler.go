// internal/workers/recommendation/match-new-announcements/handler.go
package matchnewannouncements

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
	"grant-workers/internal/common/events"
	"grant-workers/internal/common/logger"
	"grant-workers/internal/common/metrics"
	"grant-workers/internal/common/validation"
	"grant-workers/internal/models"
	"grant-workers/internal/recommendation/ranker"
	"grant-workers/internal/store"
)

const TaskType = "match-new-announcements"

type CompanyReader interface {
	Get(ctx context.Context, id string) (*models.CompanyProfile, error)
}

type CandidateSource interface {
	CreatedSince(ctx context.Context, since, today time.Time, limit int) ([]*models.Announcement, error)
}

type NotificationLog interface {
	AlreadySent(ctx context.Context, userID, notificationType string, since time.Time, ids []string) (map[string]struct{}, error)
	Record(ctx context.Context, userID, notificationType string, ids []string) error
}

type Dependencies struct {
	Companies     CompanyReader
	Candidates    CandidateSource
	Notifications NotificationLog
	Publisher     events.Publisher
	Ranker        *ranker.Ranker
	Schema        *validation.Schema
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
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
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

// execute ranks announcements created within the lookback window, drops the
// ones already notified today, publishes the rest and records them. The
// event is published before the log is written; a failed write may repeat
// the event on retry.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CompanyID == "" || input.UserID == "" {
		return nil, errors.NewInvalidInputError("companyId and userId are required")
	}

	runID := uuid.NewString()
	log := h.logger.WithFields(map[string]interface{}{
		"runId":     runID,
		"companyId": input.CompanyID,
		"userId":    input.UserID,
	})
	output := &Output{RunID: runID, Recommendations: []models.Recommendation{}}

	company, err := h.deps.Companies.Get(ctx, input.CompanyID)
	if err != nil {
		switch {
		case stderrors.Is(err, store.ErrCompanyNotFound):
			return nil, errors.NewCompanyNotFoundError(input.CompanyID)
		case stderrors.Is(err, context.DeadlineExceeded):
			return nil, errors.NewQueryTimeoutError("company")
		default:
			return nil, errors.NewCompanyLookupError(input.CompanyID, err)
		}
	}

	lookback := h.config.Lookback
	if input.LookbackHours > 0 {
		lookback = time.Duration(input.LookbackHours) * time.Hour
	}
	now := h.now().UTC()

	candidates, err := h.deps.Candidates.CreatedSince(ctx, now.Add(-lookback), now, h.config.CandidateLimit)
	if err != nil {
		return nil, h.candidateError(err)
	}
	output.NewAnnouncements = len(candidates)
	if len(candidates) == 0 {
		log.Info("no new announcements", map[string]interface{}{"lookbackHours": lookback.Hours()})
		return output, nil
	}

	result, err := h.deps.Ranker.Rank(ctx, company, candidates, nil, &ranker.Options{
		MinScore: ranker.Threshold(h.config.MinScore),
		Limit:    h.config.Limit,
	})
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	output.Matched = len(result.Recommendations)
	if output.Matched == 0 {
		log.Info("no new announcements above threshold", map[string]interface{}{
			"newAnnouncements": output.NewAnnouncements,
			"minScore":         h.config.MinScore,
		})
		return output, nil
	}

	ids := make([]string, len(result.Recommendations))
	for i, r := range result.Recommendations {
		ids[i] = r.Announcement.ID
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sent, err := h.deps.Notifications.AlreadySent(ctx, input.UserID, store.NotificationSmartRecommendation, startOfDay, ids)
	if err != nil {
		return nil, errors.NewNotificationLogError(err)
	}

	fresh := make([]models.Recommendation, 0, len(result.Recommendations))
	freshIDs := make([]string, 0, len(result.Recommendations))
	for _, r := range result.Recommendations {
		if _, done := sent[r.Announcement.ID]; done {
			continue
		}
		fresh = append(fresh, r)
		freshIDs = append(freshIDs, r.Announcement.ID)
	}
	output.AlreadyNotified = output.Matched - len(fresh)
	if len(fresh) == 0 {
		log.Info("all matches already notified today", map[string]interface{}{"matched": output.Matched})
		return output, nil
	}

	event := events.NewRecommendationsReady(runID, input.UserID, input.CompanyID, fresh)
	messageID, err := h.deps.Publisher.Publish(ctx, event)
	if err != nil {
		return nil, errors.NewEventPublishError(events.TypeRecommendationsReady, err)
	}

	if err := h.deps.Notifications.Record(ctx, input.UserID, store.NotificationSmartRecommendation, freshIDs); err != nil {
		return nil, errors.NewNotificationLogError(err)
	}
	metrics.NotificationsRecorded.Add(float64(len(freshIDs)))

	output.Recommendations = fresh
	output.Notified = true
	output.EventID = event.EventID
	output.MessageID = messageID

	log.Info("new announcement matches recorded", map[string]interface{}{
		"newAnnouncements": output.NewAnnouncements,
		"matched":          output.Matched,
		"alreadyNotified":  output.AlreadyNotified,
		"recorded":         len(freshIDs),
		"eventId":          event.EventID,
	})
	return output, nil
}

func (h *Handler) candidateError(err error) error {
	search := h.config.CandidateSource == config.CandidateSourceElasticsearch
	timedOut := stderrors.Is(err, context.DeadlineExceeded)
	switch {
	case search && timedOut:
		return errors.NewSearchTimeoutError("created-since")
	case search:
		return errors.NewSearchQueryFailedError("created-since", err)
	case timedOut:
		return errors.NewQueryTimeoutError("created-since")
	default:
		return errors.NewCandidateQueryError(h.config.CandidateSource, err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
