// internal/workers/recommendation/match-new-announcements/models.go
package matchnewannouncements

import "grant-workers/internal/models"

type Input struct {
	CompanyID     string `json:"companyId"`
	UserID        string `json:"userId"`
	LookbackHours int    `json:"lookbackHours,omitempty"`
}

type Output struct {
	RunID            string                  `json:"runId"`
	NewAnnouncements int                     `json:"newAnnouncements"`
	Matched          int                     `json:"matched"`
	AlreadyNotified  int                     `json:"alreadyNotified"`
	Recommendations  []models.Recommendation `json:"recommendations"`
	Notified         bool                    `json:"notified"`
	EventID          string                  `json:"eventId,omitempty"`
	MessageID        string                  `json:"messageId,omitempty"`
}
