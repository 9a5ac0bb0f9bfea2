// internal/recommendation/behavior/collector.go
package behavior

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"grant-workers/internal/common/logger"
	"grant-workers/internal/models"
)

// DefaultWindow is how far back interaction history is read.
const DefaultWindow = 30 * 24 * time.Hour

// Source reads one user's interaction history since a cutoff. Each method
// returns rows already joined with the announcement category and organization.
type Source interface {
	RecentViews(ctx context.Context, userID string, since time.Time) ([]models.Interaction, error)
	RecentSaves(ctx context.Context, userID string, since time.Time) ([]models.Interaction, error)
	RecentMatches(ctx context.Context, userID string, since time.Time) ([]models.Interaction, error)
	RecentApplications(ctx context.Context, userID string, since time.Time) ([]models.Interaction, error)
}

type Collector struct {
	source Source
	window time.Duration
	now    func() time.Time
	logger logger.Logger
}

type CollectorOption func(*Collector)

func WithWindow(window time.Duration) CollectorOption {
	return func(c *Collector) {
		if window > 0 {
			c.window = window
		}
	}
}

func WithCollectorClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		c.now = now
	}
}

func NewCollector(source Source, log logger.Logger, opts ...CollectorOption) *Collector {
	c := &Collector{
		source: source,
		window: DefaultWindow,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"component": "behavior-collector"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect reads the four interaction sources concurrently and aggregates
// them. The returned signals are never nil: when any source fails the
// collector returns empty signals together with the error so callers can
// rank on eligibility alone.
func (c *Collector) Collect(ctx context.Context, userID string) (*models.BehaviorSignals, error) {
	if userID == "" {
		return models.NewBehaviorSignals(), nil
	}

	since := c.now().Add(-c.window)
	readers := []struct {
		name string
		read func(context.Context, string, time.Time) ([]models.Interaction, error)
	}{
		{"views", c.source.RecentViews},
		{"saves", c.source.RecentSaves},
		{"matches", c.source.RecentMatches},
		{"applications", c.source.RecentApplications},
	}

	// One slot per source keeps the goroutines free of shared writes.
	results := make([][]models.Interaction, len(readers))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range readers {
		i, r := i, r
		g.Go(func() error {
			rows, err := r.read(gctx, userID, since)
			if err != nil {
				return fmt.Errorf("read %s: %w", r.name, err)
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.Warn("behavior collection degraded to empty signals", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return models.NewBehaviorSignals(), err
	}

	var all []models.Interaction
	for _, rows := range results {
		all = append(all, rows...)
	}
	signals := Aggregate(all)

	c.logger.Debug("behavior signals collected", map[string]interface{}{
		"userId":        userID,
		"interactions":  len(all),
		"categories":    len(signals.CategoryPreferences),
		"organizations": len(signals.OrganizationPreferences),
	})
	return signals, nil
}
