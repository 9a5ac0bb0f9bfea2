// internal/recommendation/behavior/scorer.go
package behavior

import (
	"math"

	"grant-workers/internal/models"
)

const (
	MaxCategoryPoints     = 15
	MaxOrganizationPoints = 10
	HistoryBonus          = 5
	MaxBehaviorPoints     = 30
)

// Verdict is the behavior adjustment for one candidate. Repeat marks an
// announcement the user already acted on; Points is then zero.
type Verdict struct {
	Repeat bool
	Points int
}

// Score computes the behavior adjustment for a candidate. Category and
// organization weights are normalized by the user's own maximum so the
// result does not depend on how active the user is overall.
func Score(signals *models.BehaviorSignals, ann *models.Announcement) Verdict {
	if signals == nil || ann == nil {
		return Verdict{}
	}
	if signals.HasInteracted(ann.ID) {
		return Verdict{Repeat: true}
	}

	points := 0
	if w := signals.CategoryPreferences[ann.Category]; ann.Category != "" && w > 0 {
		points += normalized(w, signals.CategoryPreferences, MaxCategoryPoints)
	}
	if w := signals.OrganizationPreferences[ann.Organization]; ann.Organization != "" && w > 0 {
		points += normalized(w, signals.OrganizationPreferences, MaxOrganizationPoints)
	}
	if total(signals.CategoryPreferences) > 0 {
		points += HistoryBonus
	}

	if points > MaxBehaviorPoints {
		points = MaxBehaviorPoints
	}
	return Verdict{Points: points}
}

// Apply overlays behavior on a scored outcome. Non-scored outcomes pass
// through unchanged; a repeat turns the outcome into OutcomeRepeat.
func Apply(outcome models.Outcome, signals *models.BehaviorSignals, ann *models.Announcement) models.Outcome {
	if !outcome.IsScored() || signals == nil {
		return outcome
	}

	v := Score(signals, ann)
	if v.Repeat {
		return models.Outcome{Status: models.OutcomeRepeat, Reason: "already_interacted"}
	}

	out := outcome
	out.Breakdown.Behavior = v.Points
	out.Breakdown.Total = out.Breakdown.Sum()
	return out
}

func normalized(w float64, prefs map[string]float64, limit int) int {
	peak := 1.0
	for _, v := range prefs {
		if v > peak {
			peak = v
		}
	}
	return int(math.Round(float64(limit) * w / peak))
}

func total(prefs map[string]float64) float64 {
	var sum float64
	for _, v := range prefs {
		sum += v
	}
	return sum
}
