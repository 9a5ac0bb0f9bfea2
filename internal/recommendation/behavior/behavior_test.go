package behavior

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-workers/internal/common/logger"
	"grant-workers/internal/models"
)

func scorePtr(v float64) *float64 { return &v }

func signalsWith(categories, organizations map[string]float64, interacted ...string) *models.BehaviorSignals {
	s := models.NewBehaviorSignals()
	for k, v := range categories {
		s.CategoryPreferences[k] = v
	}
	for k, v := range organizations {
		s.OrganizationPreferences[k] = v
	}
	for _, id := range interacted {
		s.InteractedAnnouncements[id] = struct{}{}
	}
	return s
}

// ==========================
// Aggregation Tests
// ==========================

func TestWeightOf(t *testing.T) {
	tests := []struct {
		name string
		in   models.Interaction
		want float64
	}{
		{"single view", models.Interaction{Kind: models.InteractionView, Count: 1}, 1},
		{"views capped at five", models.Interaction{Kind: models.InteractionView, Count: 12}, 5},
		{"save", models.Interaction{Kind: models.InteractionSave}, 3},
		{"low match", models.Interaction{Kind: models.InteractionMatch, Score: scorePtr(79.9)}, 5},
		{"high match", models.Interaction{Kind: models.InteractionMatch, Score: scorePtr(80)}, 8},
		{"match without score", models.Interaction{Kind: models.InteractionMatch}, 5},
		{"application", models.Interaction{Kind: models.InteractionApplication}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeightOf(tt.in))
		})
	}
}

func TestAggregate(t *testing.T) {
	signals := Aggregate([]models.Interaction{
		{Kind: models.InteractionView, AnnouncementID: "a1", Category: "R&D", Organization: "과기정통부", Count: 7},
		{Kind: models.InteractionSave, AnnouncementID: "a2", Category: "R&D", Organization: "중기부"},
		{Kind: models.InteractionApplication, AnnouncementID: "a3", Category: "수출"},
		{Kind: models.InteractionMatch, AnnouncementID: "a4", Score: scorePtr(91)},
	})

	assert.Equal(t, 8.0, signals.CategoryPreferences["R&D"])
	assert.Equal(t, 10.0, signals.CategoryPreferences["수출"])
	assert.Equal(t, 5.0, signals.OrganizationPreferences["과기정통부"])
	assert.Equal(t, 3.0, signals.OrganizationPreferences["중기부"])
	assert.Len(t, signals.CategoryPreferences, 2)
	assert.Equal(t, []string{"a1", "a2", "a3", "a4"}, signals.InteractedIDs())
}

// ==========================
// Scoring Tests
// ==========================

func TestScore_Normalization(t *testing.T) {
	signals := signalsWith(map[string]float64{"A": 20, "B": 10}, nil)

	assert.Equal(t, Verdict{Points: 20}, Score(signals, &models.Announcement{ID: "x", Category: "A"}))
	assert.Equal(t, Verdict{Points: 13}, Score(signals, &models.Announcement{ID: "y", Category: "B"}))
	assert.Equal(t, Verdict{Points: 5}, Score(signals, &models.Announcement{ID: "z", Category: "C"}))
}

func TestScore_OrganizationAndCap(t *testing.T) {
	signals := signalsWith(
		map[string]float64{"A": 40},
		map[string]float64{"중기부": 40, "산업부": 10},
	)

	v := Score(signals, &models.Announcement{ID: "x", Category: "A", Organization: "중기부"})
	assert.Equal(t, 30, v.Points)

	v = Score(signals, &models.Announcement{ID: "y", Category: "B", Organization: "산업부"})
	assert.Equal(t, 8, v.Points) // round(10*10/40)=3 + 5
}

func TestScore_SmallWeightsNormalizeAgainstOne(t *testing.T) {
	signals := signalsWith(map[string]float64{"A": 0.5}, nil)

	v := Score(signals, &models.Announcement{ID: "x", Category: "A"})
	assert.Equal(t, 13, v.Points) // round(15*0.5/1)=8 + 5
}

func TestScore_NoHistory(t *testing.T) {
	v := Score(models.NewBehaviorSignals(), &models.Announcement{ID: "x", Category: "A"})
	assert.Equal(t, Verdict{}, v)
}

func TestScore_Repeat(t *testing.T) {
	signals := signalsWith(map[string]float64{"A": 20}, nil, "seen")

	v := Score(signals, &models.Announcement{ID: "seen", Category: "A"})
	assert.True(t, v.Repeat)
	assert.Zero(t, v.Points)
}

func TestApply(t *testing.T) {
	scored := models.Outcome{
		Status: models.OutcomeScored,
		Breakdown: models.ScoreBreakdown{
			Industry: 30, Region: 20, EmployeeCount: 15, Revenue: 15, BusinessAge: 10, Total: 90,
		},
	}
	signals := signalsWith(map[string]float64{"A": 20, "B": 10}, nil, "seen")

	t.Run("adds behavior into total", func(t *testing.T) {
		out := Apply(scored, signals, &models.Announcement{ID: "x", Category: "A"})
		assert.Equal(t, 20, out.Breakdown.Behavior)
		assert.Equal(t, 110, out.Breakdown.Total)
		assert.Equal(t, out.Breakdown.Sum(), out.Breakdown.Total)
	})

	t.Run("repeat becomes tagged outcome", func(t *testing.T) {
		out := Apply(scored, signals, &models.Announcement{ID: "seen", Category: "A"})
		assert.Equal(t, models.OutcomeRepeat, out.Status)
	})

	t.Run("excluded passes through", func(t *testing.T) {
		excluded := models.Outcome{Status: models.OutcomeExcluded}
		assert.Equal(t, excluded, Apply(excluded, signals, &models.Announcement{ID: "seen"}))
	})

	t.Run("nil signals leave outcome untouched", func(t *testing.T) {
		assert.Equal(t, scored, Apply(scored, nil, &models.Announcement{ID: "x"}))
	})
}

// ==========================
// Collector Tests
// ==========================

type fakeSource struct {
	views, saves, matches, applications []models.Interaction
	failOn                              string
	calls                               int32

	mu    sync.Mutex
	since time.Time
}

func (f *fakeSource) read(kind string, rows []models.Interaction, since time.Time) ([]models.Interaction, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.since = since
	f.mu.Unlock()
	if f.failOn == kind {
		return nil, errors.New("connection reset by peer")
	}
	return rows, nil
}

func (f *fakeSource) RecentViews(_ context.Context, _ string, since time.Time) ([]models.Interaction, error) {
	return f.read("views", f.views, since)
}

func (f *fakeSource) RecentSaves(_ context.Context, _ string, since time.Time) ([]models.Interaction, error) {
	return f.read("saves", f.saves, since)
}

func (f *fakeSource) RecentMatches(_ context.Context, _ string, since time.Time) ([]models.Interaction, error) {
	return f.read("matches", f.matches, since)
}

func (f *fakeSource) RecentApplications(_ context.Context, _ string, since time.Time) ([]models.Interaction, error) {
	return f.read("applications", f.applications, since)
}

func TestCollector_Collect(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		views:        []models.Interaction{{Kind: models.InteractionView, AnnouncementID: "a1", Category: "A", Count: 2}},
		saves:        []models.Interaction{{Kind: models.InteractionSave, AnnouncementID: "a2", Category: "A"}},
		matches:      []models.Interaction{{Kind: models.InteractionMatch, AnnouncementID: "a3", Category: "B", Score: scorePtr(85)}},
		applications: []models.Interaction{{Kind: models.InteractionApplication, AnnouncementID: "a4", Organization: "중기부"}},
	}
	c := NewCollector(src, logger.NewTestLogger(t), WithCollectorClock(func() time.Time { return now }))

	signals, err := c.Collect(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&src.calls))
	assert.Equal(t, now.Add(-DefaultWindow), src.since)
	assert.Equal(t, 5.0, signals.CategoryPreferences["A"])
	assert.Equal(t, 8.0, signals.CategoryPreferences["B"])
	assert.Equal(t, 10.0, signals.OrganizationPreferences["중기부"])
	assert.Len(t, signals.InteractedAnnouncements, 4)
}

func TestCollector_DegradesOnFailure(t *testing.T) {
	src := &fakeSource{
		views:  []models.Interaction{{Kind: models.InteractionView, AnnouncementID: "a1", Category: "A", Count: 2}},
		failOn: "matches",
	}
	c := NewCollector(src, logger.NewNoOpLogger())

	signals, err := c.Collect(context.Background(), "user-1")

	assert.Error(t, err)
	require.NotNil(t, signals)
	assert.Empty(t, signals.CategoryPreferences)
	assert.Empty(t, signals.OrganizationPreferences)
	assert.Empty(t, signals.InteractedAnnouncements)
}

func TestCollector_AnonymousUser(t *testing.T) {
	src := &fakeSource{}
	c := NewCollector(src, logger.NewNoOpLogger(), WithWindow(7*24*time.Hour))

	signals, err := c.Collect(context.Background(), "")

	require.NoError(t, err)
	assert.Empty(t, signals.InteractedAnnouncements)
	assert.Zero(t, atomic.LoadInt32(&src.calls))
}
