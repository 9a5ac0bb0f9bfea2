package ranker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-workers/internal/models"
	"grant-workers/internal/recommendation/eligibility"
	"grant-workers/internal/recommendation/taxonomy"
)

var fixedNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func newTestRanker(defaults Options) *Ranker {
	ev := eligibility.NewEvaluator(taxonomy.Default(), eligibility.WithClock(func() time.Time { return fixedNow }))
	return New(ev, defaults)
}

func deadline(days int) *models.Date {
	d := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return models.NewDate(d)
}

func testCompany() *models.CompanyProfile {
	return &models.CompanyProfile{
		Industry:       strPtr("software"),
		Location:       strPtr("seoul"),
		Certifications: []string{"venture"},
	}
}

// perfect scores 100 for testCompany.
func perfect(id string, end *models.Date) *models.Announcement {
	return &models.Announcement{
		ID:             id,
		Title:          "공고 " + id,
		Category:       "R&D",
		Organization:   "과기정통부",
		ApplicationEnd: end,
		Eligibility: &models.EligibilityCriteria{
			Industries: models.InclusionList{Included: []string{"소프트웨어"}},
			Regions:    models.InclusionList{Included: []string{"서울"}},
		},
	}
}

// weak scores 50: industry and region both miss.
func weak(id string) *models.Announcement {
	return &models.Announcement{
		ID:             id,
		ApplicationEnd: deadline(30),
		Eligibility: &models.EligibilityCriteria{
			Industries: models.InclusionList{Included: []string{"농업"}},
			Regions:    models.InclusionList{Included: []string{"제주"}},
		},
	}
}

func ids(recs []models.Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Announcement.ID)
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRank_FiltersAndOrders(t *testing.T) {
	r := newTestRanker(Options{})
	excluded := perfect("excluded", deadline(30))
	excluded.Eligibility.Industries.Excluded = []string{"정보통신업"}
	unscored := &models.Announcement{ID: "unscored"}
	soon := perfect("soon", deadline(3))

	result, err := r.Rank(context.Background(), testCompany(), []*models.Announcement{
		weak("weak"), excluded, unscored, perfect("later", deadline(30)), soon,
	}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"soon", "later", "weak"}, ids(result.Recommendations))
	assert.Equal(t, 105, result.Recommendations[0].Score)
	assert.Equal(t, GradeBest, result.Recommendations[0].Grade)
	assert.Equal(t, GradeGeneral, result.Recommendations[2].Grade)
	assert.Equal(t, Stats{Candidates: 5, Scored: 3, Excluded: 1, NotScorable: 1, Returned: 3}, result.Stats)
}

func TestRank_MinScoreAndLimit(t *testing.T) {
	r := newTestRanker(Options{})
	var candidates []*models.Announcement
	for i := 0; i < 15; i++ {
		candidates = append(candidates, perfect(fmt.Sprintf("p%02d", i), deadline(20+i)))
	}
	candidates = append(candidates, weak("w1"))

	t.Run("defaults", func(t *testing.T) {
		result, err := r.Rank(context.Background(), testCompany(), candidates, nil, nil)
		require.NoError(t, err)
		assert.Len(t, result.Recommendations, DefaultLimit)
		for _, rec := range result.Recommendations {
			assert.GreaterOrEqual(t, rec.Score, DefaultMinScore)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		result, err := r.Rank(context.Background(), testCompany(), candidates, nil, &Options{MinScore: Threshold(70), Limit: 20})
		require.NoError(t, err)
		assert.Len(t, result.Recommendations, 15)
		assert.Equal(t, 1, result.Stats.BelowMin)
		for _, rec := range result.Recommendations {
			assert.GreaterOrEqual(t, rec.Score, 70)
		}
	})
}

func TestRank_ZeroMinScoreKeepsLowScores(t *testing.T) {
	company := testCompany()
	company.EmployeeCount = intPtr(3)
	low := weak("low")
	low.Eligibility.EmployeeCount = &models.NumericRange{Min: floatPtr(10)}

	tests := []struct {
		name     string
		defaults Options
		opts     *Options
		want     []string
	}{
		{name: "default threshold drops 35", opts: nil, want: []string{}},
		{name: "explicit zero keeps 35", opts: &Options{MinScore: Threshold(0)}, want: []string{"low"}},
		{name: "negative behaves as zero", opts: &Options{MinScore: Threshold(-5)}, want: []string{"low"}},
		{name: "zero in ranker defaults", defaults: Options{MinScore: Threshold(0)}, want: []string{"low"}},
		{name: "request overrides zero default", defaults: Options{MinScore: Threshold(0)}, opts: &Options{MinScore: Threshold(40)}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRanker(tt.defaults)
			result, err := r.Rank(context.Background(), company, []*models.Announcement{low}, nil, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(result.Recommendations))
			if len(result.Recommendations) == 1 {
				assert.Equal(t, 35, result.Recommendations[0].Score)
			}
		})
	}
}

func TestRank_ZeroLimitUsesDefault(t *testing.T) {
	r := newTestRanker(Options{})
	var candidates []*models.Announcement
	for i := 0; i < 12; i++ {
		candidates = append(candidates, perfect(fmt.Sprintf("p%02d", i), deadline(10+i)))
	}

	result, err := r.Rank(context.Background(), testCompany(), candidates, nil, &Options{Limit: 0})

	require.NoError(t, err)
	assert.Len(t, result.Recommendations, DefaultLimit)
}

func TestRank_TieBreak(t *testing.T) {
	r := newTestRanker(Options{})
	noDeadline := perfect("a-none", nil)

	result, err := r.Rank(context.Background(), testCompany(), []*models.Announcement{
		noDeadline, perfect("c", deadline(40)), perfect("b", deadline(20)), perfect("a", deadline(40)),
	}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c", "a-none"}, ids(result.Recommendations))
}

// ==========================
// Behavior Overlay Tests
// ==========================

func TestRank_AntiRepeat(t *testing.T) {
	r := newTestRanker(Options{})
	signals := models.NewBehaviorSignals()
	signals.CategoryPreferences["R&D"] = 12
	signals.InteractedAnnouncements["seen"] = struct{}{}

	result, err := r.Rank(context.Background(), testCompany(), []*models.Announcement{
		perfect("seen", deadline(30)), perfect("fresh", deadline(30)),
	}, signals, nil)

	require.NoError(t, err)
	require.Equal(t, []string{"fresh"}, ids(result.Recommendations))
	assert.Equal(t, 1, result.Stats.Repeats)

	rec := result.Recommendations[0]
	assert.Equal(t, 20, rec.ScoreBreakdown.Behavior)
	assert.Equal(t, 120, rec.Score)
	assert.Equal(t, rec.ScoreBreakdown.Sum(), rec.ScoreBreakdown.Total)
}

func TestRank_BehaviorCanLiftAboveThreshold(t *testing.T) {
	r := newTestRanker(Options{MinScore: Threshold(60)})
	candidate := weak("lifted")
	candidate.Category = "수출"
	signals := models.NewBehaviorSignals()
	signals.CategoryPreferences["수출"] = 9

	without, err := r.Rank(context.Background(), testCompany(), []*models.Announcement{candidate}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, without.Recommendations)

	with, err := r.Rank(context.Background(), testCompany(), []*models.Announcement{candidate}, signals, nil)
	require.NoError(t, err)
	require.Len(t, with.Recommendations, 1)
	assert.Equal(t, 70, with.Recommendations[0].Score)
}

func TestRank_CancelledContext(t *testing.T) {
	r := newTestRanker(Options{Parallelism: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Rank(ctx, testCompany(), []*models.Announcement{perfect("a", nil)}, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRank_Empty(t *testing.T) {
	r := newTestRanker(Options{})

	result, err := r.Rank(context.Background(), testCompany(), nil, nil, nil)

	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
	assert.NotNil(t, result.Recommendations)
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{120, "best fit"},
		{90, "best fit"},
		{89, "good fit"},
		{75, "good fit"},
		{74, "fair fit"},
		{60, "fair fit"},
		{59, "general fit"},
		{0, "general fit"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.total).Label, "total=%d", tt.total)
	}
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{MinScore: Threshold(-1)}.withDefaults()
	assert.Equal(t, 0, *o.MinScore)
	assert.Equal(t, DefaultLimit, o.Limit)
	assert.Positive(t, o.Parallelism)

	assert.Equal(t, 0, *Options{MinScore: Threshold(0)}.withDefaults().MinScore)
	assert.Equal(t, DefaultMinScore, *newTestRanker(Options{}).Defaults().MinScore)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkRank(b *testing.B) {
	r := newTestRanker(Options{Limit: 20})
	candidates := make([]*models.Announcement, 0, 200)
	for i := 0; i < 200; i++ {
		if i%3 == 0 {
			candidates = append(candidates, weak(fmt.Sprintf("w%03d", i)))
			continue
		}
		candidates = append(candidates, perfect(fmt.Sprintf("p%03d", i), deadline(i%40)))
	}
	company := testCompany()
	company.AnnualRevenue = floatPtr(120000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.Rank(context.Background(), company, candidates, nil, nil)
	}
}
