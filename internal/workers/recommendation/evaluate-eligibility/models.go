// internal/workers/recommendation/evaluate-eligibility/models.go
package evaluateeligibility

import "grant-workers/internal/models"

type Input struct {
	Company      models.CompanyProfile `json:"company"`
	Announcement models.Announcement   `json:"announcement"`
}

type Output struct {
	Status          models.OutcomeStatus      `json:"status"`
	Reason          string                    `json:"reason,omitempty"`
	Score           int                       `json:"score"`
	Grade           *models.Grade             `json:"grade,omitempty"`
	ScoreBreakdown  *models.ScoreBreakdown    `json:"scoreBreakdown,omitempty"`
	MatchedCriteria []models.MatchedCriterion `json:"matchedCriteria"`
}
