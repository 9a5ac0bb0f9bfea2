// internal/models/announcement.go
package models

// NumericRange is an inclusive bound; a nil side is unbounded.
type NumericRange struct {
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	Description string   `json:"description,omitempty"`
}

type InclusionList struct {
	Included    []string `json:"included"`
	Excluded    []string `json:"excluded"`
	Description string   `json:"description,omitempty"`
}

// EligibilityCriteria is the AI-parsed qualification block of an announcement.
// Any sub-field may be missing and is then treated as "no constraint".
type EligibilityCriteria struct {
	CompanyTypes           []string      `json:"companyTypes,omitempty"`
	EmployeeCount          *NumericRange `json:"employeeCount,omitempty"`
	Revenue                *NumericRange `json:"revenue,omitempty"`
	BusinessAge            *NumericRange `json:"businessAge,omitempty"`
	Industries             InclusionList `json:"industries"`
	Regions                InclusionList `json:"regions"`
	RequiredCertifications []string      `json:"requiredCertifications,omitempty"`
	AdditionalRequirements []string      `json:"additionalRequirements,omitempty"`
	Exclusions             []string      `json:"exclusions,omitempty"`
	Summary                string        `json:"summary,omitempty"`
	Confidence             float64       `json:"confidence,omitempty"`
}

// Announcement is a recommendation candidate. Eligibility is nil when the
// announcement has not been parsed yet.
type Announcement struct {
	ID             string               `json:"id" validate:"required"`
	Title          string               `json:"title"`
	Organization   string               `json:"organization,omitempty"`
	Category       string               `json:"category,omitempty"`
	SupportType    string               `json:"supportType,omitempty"`
	SupportAmount  string               `json:"supportAmount,omitempty"`
	ApplicationEnd *Date                `json:"applicationEnd,omitempty"`
	Eligibility    *EligibilityCriteria `json:"eligibilityCriteria"`
}

// AnnouncementSummary is the display subset returned with a recommendation.
type AnnouncementSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Organization   string `json:"organization,omitempty"`
	Category       string `json:"category,omitempty"`
	SupportType    string `json:"supportType,omitempty"`
	SupportAmount  string `json:"supportAmount,omitempty"`
	ApplicationEnd *Date  `json:"applicationEnd,omitempty"`
}

func (a *Announcement) Summary() AnnouncementSummary {
	return AnnouncementSummary{
		ID:             a.ID,
		Title:          a.Title,
		Organization:   a.Organization,
		Category:       a.Category,
		SupportType:    a.SupportType,
		SupportAmount:  a.SupportAmount,
		ApplicationEnd: a.ApplicationEnd,
	}
}
