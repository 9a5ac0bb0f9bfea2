// internal/recommendation/behavior/signals.go
package behavior

import "grant-workers/internal/models"

// Interaction weights.
const (
	WeightView           = 1
	MaxCountedViews      = 5
	WeightSave           = 3
	WeightMatch          = 5
	WeightMatchHighScore = 8
	HighMatchScore       = 80
	WeightApplication    = 10
)

// WeightOf returns the preference weight contributed by one interaction.
func WeightOf(in models.Interaction) float64 {
	switch in.Kind {
	case models.InteractionView:
		views := in.Count
		if views > MaxCountedViews {
			views = MaxCountedViews
		}
		if views < 0 {
			views = 0
		}
		return float64(views * WeightView)
	case models.InteractionSave:
		return WeightSave
	case models.InteractionMatch:
		if in.Score != nil && *in.Score >= HighMatchScore {
			return WeightMatchHighScore
		}
		return WeightMatch
	case models.InteractionApplication:
		return WeightApplication
	}
	return 0
}

// Aggregate folds interactions into a preference profile. Every
// announcement is marked as interacted even when its category or
// organization is unknown.
func Aggregate(interactions []models.Interaction) *models.BehaviorSignals {
	signals := models.NewBehaviorSignals()
	for _, in := range interactions {
		if in.AnnouncementID != "" {
			signals.InteractedAnnouncements[in.AnnouncementID] = struct{}{}
		}
		w := WeightOf(in)
		if in.Category != "" {
			signals.CategoryPreferences[in.Category] += w
		}
		if in.Organization != "" {
			signals.OrganizationPreferences[in.Organization] += w
		}
	}
	return signals
}
