// internal/models/recommendation.go
package models

type ScoreBreakdown struct {
	Industry      int `json:"industry"`
	Region        int `json:"region"`
	EmployeeCount int `json:"employeeCount"`
	Revenue       int `json:"revenue"`
	BusinessAge   int `json:"businessAge"`
	Certification int `json:"certification"`
	Bonus         int `json:"bonus"`
	Behavior      int `json:"behavior"`
	Total         int `json:"total"`
}

// Sum recomputes the total from the individual components.
func (b ScoreBreakdown) Sum() int {
	return b.Industry + b.Region + b.EmployeeCount + b.Revenue +
		b.BusinessAge + b.Certification + b.Bonus + b.Behavior
}

type MatchedCriterion struct {
	Name      string `json:"name"`
	Matched   bool   `json:"matched"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"maxPoints"`
	Reason    string `json:"reason"`
}

type Grade struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type Recommendation struct {
	Announcement    AnnouncementSummary `json:"announcement"`
	MatchedCriteria []MatchedCriterion  `json:"matchedCriteria"`
	Score           int                 `json:"score"`
	ScoreBreakdown  ScoreBreakdown      `json:"scoreBreakdown"`
	Grade           Grade               `json:"grade"`
}
