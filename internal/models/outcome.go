// internal/models/outcome.go
package models

// OutcomeStatus tags the result of scoring one candidate.
type OutcomeStatus string

const (
	// OutcomeScored carries a breakdown and matched criteria.
	OutcomeScored OutcomeStatus = "scored"
	// OutcomeExcluded means a hard industry or region exclusion applied.
	OutcomeExcluded OutcomeStatus = "excluded"
	// OutcomeNotScorable means the announcement has no eligibility criteria.
	OutcomeNotScorable OutcomeStatus = "not_scorable"
	// OutcomeRepeat means the user already interacted with the announcement.
	OutcomeRepeat OutcomeStatus = "repeat"
)

// Outcome is the tagged result of evaluating a candidate. Breakdown and
// Criteria are only meaningful when Status is OutcomeScored.
type Outcome struct {
	Status    OutcomeStatus      `json:"status"`
	Reason    string             `json:"reason,omitempty"`
	Breakdown ScoreBreakdown     `json:"scoreBreakdown"`
	Criteria  []MatchedCriterion `json:"matchedCriteria,omitempty"`
}

func (o Outcome) IsScored() bool {
	return o.Status == OutcomeScored
}

// Total is the scored total, or zero for any other status.
func (o Outcome) Total() int {
	if !o.IsScored() {
		return 0
	}
	return o.Breakdown.Total
}
