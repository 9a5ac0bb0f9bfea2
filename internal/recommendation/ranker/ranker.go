// internal/recommendation/ranker/ranker.go
package ranker

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"grant-workers/internal/models"
	"grant-workers/internal/recommendation/behavior"
	"grant-workers/internal/recommendation/eligibility"
)

const (
	DefaultMinScore = 50
	DefaultLimit    = 10
)

// Options controls filtering and truncation.
//
// A nil MinScore means DefaultMinScore. An explicit 0 keeps every scored
// candidate, and a negative value is treated as 0. Limit <= 0 means
// DefaultLimit: an unset page size and an explicit 0 both get a full page.
// Parallelism <= 0 means GOMAXPROCS.
type Options struct {
	MinScore    *int
	Limit       int
	Parallelism int
}

// Threshold returns a MinScore value for Options.
func Threshold(score int) *int {
	return &score
}

func (o Options) withDefaults() Options {
	threshold := DefaultMinScore
	if o.MinScore != nil {
		threshold = *o.MinScore
	}
	if threshold < 0 {
		threshold = 0
	}
	o.MinScore = &threshold
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	return o
}

// Stats counts how candidates were disposed of during a ranking run.
type Stats struct {
	Candidates  int `json:"totalCandidates"`
	Scored      int `json:"evaluated"`
	Excluded    int `json:"excluded"`
	NotScorable int `json:"notScorable"`
	Repeats     int `json:"repeats"`
	BelowMin    int `json:"belowMinScore"`
	Returned    int `json:"returned"`
}

// Result is a ranked page together with disposal statistics.
type Result struct {
	Recommendations []models.Recommendation
	Stats           Stats
}

type Ranker struct {
	evaluator *eligibility.Evaluator
	defaults  Options
}

func New(evaluator *eligibility.Evaluator, defaults Options) *Ranker {
	return &Ranker{evaluator: evaluator, defaults: defaults}
}

// Defaults returns the ranker's configured options with defaults applied.
func (r *Ranker) Defaults() Options {
	return r.defaults.withDefaults()
}

type scored struct {
	index   int
	ann     *models.Announcement
	outcome models.Outcome
}

// Rank evaluates every candidate, overlays behavior when signals are given,
// drops excluded, unscorable, repeated and below-threshold candidates, then
// sorts by total descending. Equal totals are ordered by earlier deadline,
// then by announcement ID. Only a nil signals pointer skips the behavior
// step; empty signals still run it.
func (r *Ranker) Rank(ctx context.Context, company *models.CompanyProfile, candidates []*models.Announcement, signals *models.BehaviorSignals, opts *Options) (*Result, error) {
	o := r.defaults
	if opts != nil {
		if opts.MinScore != nil {
			o.MinScore = opts.MinScore
		}
		if opts.Limit != 0 {
			o.Limit = opts.Limit
		}
		if opts.Parallelism != 0 {
			o.Parallelism = opts.Parallelism
		}
	}
	o = o.withDefaults()
	minScore := *o.MinScore

	outcomes := make([]models.Outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Parallelism)
	for i, ann := range candidates {
		i, ann := i, ann
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := r.evaluator.Evaluate(company, ann)
			if signals != nil {
				outcome = behavior.Apply(outcome, signals, ann)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := Stats{Candidates: len(candidates)}
	kept := make([]scored, 0, len(candidates))
	for i, outcome := range outcomes {
		switch outcome.Status {
		case models.OutcomeNotScorable:
			stats.NotScorable++
			continue
		case models.OutcomeExcluded:
			stats.Excluded++
			continue
		case models.OutcomeRepeat:
			stats.Repeats++
			continue
		}
		stats.Scored++
		if outcome.Breakdown.Total < minScore {
			stats.BelowMin++
			continue
		}
		kept = append(kept, scored{index: i, ann: candidates[i], outcome: outcome})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return less(kept[i], kept[j])
	})
	if len(kept) > o.Limit {
		kept = kept[:o.Limit]
	}

	recs := make([]models.Recommendation, 0, len(kept))
	for _, k := range kept {
		recs = append(recs, models.Recommendation{
			Announcement:    k.ann.Summary(),
			MatchedCriteria: k.outcome.Criteria,
			Score:           k.outcome.Breakdown.Total,
			ScoreBreakdown:  k.outcome.Breakdown,
			Grade:           GradeFor(k.outcome.Breakdown.Total),
		})
	}
	stats.Returned = len(recs)

	return &Result{Recommendations: recs, Stats: stats}, nil
}

func less(a, b scored) bool {
	if a.outcome.Breakdown.Total != b.outcome.Breakdown.Total {
		return a.outcome.Breakdown.Total > b.outcome.Breakdown.Total
	}
	ae, be := a.ann.ApplicationEnd, b.ann.ApplicationEnd
	switch {
	case ae != nil && be == nil:
		return true
	case ae == nil && be != nil:
		return false
	case ae != nil && be != nil && !ae.Equal(be.Time):
		return ae.Before(be.Time)
	}
	if a.ann.ID != b.ann.ID {
		return a.ann.ID < b.ann.ID
	}
	return a.index < b.index
}
