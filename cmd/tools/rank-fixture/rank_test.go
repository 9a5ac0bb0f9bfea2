package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-workers/internal/recommendation/ranker"
	"grant-workers/internal/recommendation/taxonomy"
)

var fixtureNow = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestRankFixture(t *testing.T) {
	fx, err := loadFixture("testdata/seoul_software.json")
	require.NoError(t, err)
	require.Len(t, fx.Announcements, 4)

	res, err := rankFixture(context.Background(), fx, taxonomy.Default(), fixtureNow, ranker.Options{})
	require.NoError(t, err)

	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "a-seoul", res.Recommendations[0].Announcement.ID)
	assert.Equal(t, 100, res.Recommendations[0].Score)
	assert.Equal(t, "a-busan", res.Recommendations[1].Announcement.ID)
	assert.Equal(t, 80, res.Recommendations[1].Score)

	assert.Equal(t, ranker.Stats{Candidates: 4, Scored: 2, Excluded: 1, NotScorable: 1, Returned: 2}, res.Stats)
}

func TestRankFixture_MinScoreAndLimit(t *testing.T) {
	fx, err := loadFixture("testdata/seoul_software.json")
	require.NoError(t, err)

	res, err := rankFixture(context.Background(), fx, taxonomy.Default(), fixtureNow, ranker.Options{MinScore: ranker.Threshold(90)})
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, 1, res.Stats.BelowMin)

	res, err = rankFixture(context.Background(), fx, taxonomy.Default(), fixtureNow, ranker.Options{Limit: 1})
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "a-seoul", res.Recommendations[0].Announcement.ID)
}

func TestFixtureOptions_MinScoreFlag(t *testing.T) {
	t.Cleanup(func() {
		rootCmd.Flags().Lookup("min-score").Changed = false
		minScore = 0
	})

	assert.Nil(t, fixtureOptions(rootCmd).MinScore)

	require.NoError(t, rootCmd.Flags().Set("min-score", "0"))
	opts := fixtureOptions(rootCmd)
	require.NotNil(t, opts.MinScore)
	assert.Equal(t, 0, *opts.MinScore)

	fx, err := loadFixture("testdata/seoul_software.json")
	require.NoError(t, err)
	res, err := rankFixture(context.Background(), fx, taxonomy.Default(), fixtureNow, opts)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.BelowMin)
}

func TestLoadFixture_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadFixture(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"company":`), 0o644))
	_, err = loadFixture(broken)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"company":{"employeeCount":-1},"announcements":[]}`), 0o644))
	_, err = loadFixture(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employeeCount")
}

func TestPrintResult(t *testing.T) {
	fx, err := loadFixture("testdata/seoul_software.json")
	require.NoError(t, err)
	res, err := rankFixture(context.Background(), fx, taxonomy.Default(), fixtureNow, ranker.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "a-seoul")
	assert.Contains(t, out, "a-busan")
	assert.NotContains(t, out, "a-excluded")
	assert.Contains(t, out, "candidates=4 scored=2 excluded=1 notScorable=1 repeats=0 belowMin=0 returned=2")
}
