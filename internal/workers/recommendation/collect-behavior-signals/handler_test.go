package collectbehaviorsignals

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-workers/internal/common/camunda/camundatest"
	"grant-workers/internal/common/errors"
	"grant-workers/internal/common/logger"
	"grant-workers/internal/models"
)

// ==========================
// Fake interaction source
// ==========================

type fakeSource struct {
	mu      sync.Mutex
	since   []time.Time
	views   []models.Interaction
	saves   []models.Interaction
	failing bool
}

func (f *fakeSource) record(since time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = append(f.since, since)
}

func (f *fakeSource) RecentViews(_ context.Context, _ string, since time.Time) ([]models.Interaction, error) {
	f.record(since)
	return f.views, nil
}

func (f *fakeSource) RecentSaves(_ context.Context, _ string, since time.Time) ([]models.Interaction, error) {
	f.record(since)
	return f.saves, nil
}

func (f *fakeSource) RecentMatches(_ context.Context, _ string, since time.Time) ([]models.Interaction, error) {
	f.record(since)
	if f.failing {
		return nil, fmt.Errorf("pq: canceling statement due to statement timeout")
	}
	return nil, nil
}

func (f *fakeSource) RecentApplications(_ context.Context, _ string, since time.Time) ([]models.Interaction, error) {
	f.record(since)
	return nil, nil
}

// slowSource holds view queries until the work deadline passes.
type slowSource struct {
	fakeSource
}

func (s *slowSource) RecentViews(ctx context.Context, _ string, _ time.Time) ([]models.Interaction, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

var fixedNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T, src *fakeSource) *Handler {
	h := NewHandler(DefaultConfig(), src, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h
}

// ==========================
// Execute
// ==========================

func TestExecute_AggregatesHistory(t *testing.T) {
	src := &fakeSource{
		views: []models.Interaction{
			{Kind: models.InteractionView, AnnouncementID: "a-2", Category: "R&D", Organization: "NIPA", Count: 9},
		},
		saves: []models.Interaction{
			{Kind: models.InteractionSave, AnnouncementID: "a-1", Category: "R&D"},
		},
	}

	out, err := newTestHandler(t, src).Execute(context.Background(), &Input{UserID: "user-1"})

	require.NoError(t, err)
	assert.False(t, out.Degraded)
	assert.Equal(t, map[string]float64{"R&D": 8}, out.CategoryPreferences)
	assert.Equal(t, map[string]float64{"NIPA": 5}, out.OrganizationPreferences)
	assert.Equal(t, []string{"a-1", "a-2"}, out.InteractedAnnouncementIDs)

	for _, since := range src.since {
		assert.Equal(t, fixedNow.Add(-30*24*time.Hour), since)
	}
}

func TestExecute_WindowOverride(t *testing.T) {
	src := &fakeSource{}

	_, err := newTestHandler(t, src).Execute(context.Background(), &Input{UserID: "user-1", WindowDays: 7})

	require.NoError(t, err)
	require.Len(t, src.since, 4)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), src.since[0])
}

func TestExecute_DegradesOnSourceFailure(t *testing.T) {
	src := &fakeSource{
		failing: true,
		saves:   []models.Interaction{{Kind: models.InteractionSave, AnnouncementID: "a-1", Category: "R&D"}},
	}

	out, err := newTestHandler(t, src).Execute(context.Background(), &Input{UserID: "user-1"})

	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Empty(t, out.CategoryPreferences)
	assert.NotNil(t, out.CategoryPreferences)
	assert.Empty(t, out.InteractedAnnouncementIDs)
}

func TestExecute_RequiresUser(t *testing.T) {
	_, err := newTestHandler(t, &fakeSource{}).Execute(context.Background(), &Input{})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.AsStandardError(err).Code)
}

// ==========================
// Handle
// ==========================

func TestHandle_CompletesJob(t *testing.T) {
	src := &fakeSource{saves: []models.Interaction{{Kind: models.InteractionSave, AnnouncementID: "a-1", Category: "R&D"}}}
	client := camundatest.NewJobClient()

	newTestHandler(t, src).Handle(client, camundatest.NewJob(1, TaskType, 3, map[string]interface{}{"userId": "user-1"}))

	cmd, ok := client.Last()
	require.True(t, ok)
	assert.Equal(t, camundatest.KindComplete, cmd.Kind)
	assert.NoError(t, cmd.CtxErr)
	assert.Contains(t, cmd.Variables, `"interactedAnnouncementIds":["a-1"]`)
}

func TestHandle_CompletesDegradedAfterWorkTimeout(t *testing.T) {
	h := newTestHandler(t, &fakeSource{})
	h.source = &slowSource{}
	h.config.Timeout = 20 * time.Millisecond
	client := camundatest.NewJobClient()

	h.Handle(client, camundatest.NewJob(2, TaskType, 3, map[string]interface{}{"userId": "user-1"}))

	cmds := client.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, camundatest.KindComplete, cmds[0].Kind)
	assert.NoError(t, cmds[0].CtxErr)
	assert.Contains(t, cmds[0].Variables, `"degraded":true`)
}

func TestHandle_ThrowsWithoutUser(t *testing.T) {
	client := camundatest.NewJobClient()

	newTestHandler(t, &fakeSource{}).Handle(client, camundatest.NewJob(3, TaskType, 3, `{}`))

	cmd, ok := client.Last()
	require.True(t, ok)
	assert.Equal(t, camundatest.KindThrow, cmd.Kind)
	assert.Equal(t, string(errors.ErrCodeInvalidInput), cmd.ErrorCode)
	assert.NoError(t, cmd.CtxErr)
}
