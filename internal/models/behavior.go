// internal/models/behavior.go
package models

import (
	"sort"
	"time"
)

// InteractionKind identifies the source an interaction was read from.
type InteractionKind string

const (
	InteractionView        InteractionKind = "view"
	InteractionSave        InteractionKind = "save"
	InteractionMatch       InteractionKind = "match"
	InteractionApplication InteractionKind = "application"
)

// Interaction is one row of a user's history joined with the announcement's
// category and organization. Count is the view count for views; Score is the
// recorded AI match score for match requests.
type Interaction struct {
	Kind           InteractionKind `json:"kind"`
	AnnouncementID string          `json:"announcementId"`
	Category       string          `json:"category,omitempty"`
	Organization   string          `json:"organization,omitempty"`
	Count          int             `json:"count,omitempty"`
	Score          *float64        `json:"score,omitempty"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// BehaviorSignals is a user's windowed preference profile.
type BehaviorSignals struct {
	CategoryPreferences     map[string]float64  `json:"categoryPreferences"`
	OrganizationPreferences map[string]float64  `json:"organizationPreferences"`
	InteractedAnnouncements map[string]struct{} `json:"-"`
}

func NewBehaviorSignals() *BehaviorSignals {
	return &BehaviorSignals{
		CategoryPreferences:     make(map[string]float64),
		OrganizationPreferences: make(map[string]float64),
		InteractedAnnouncements: make(map[string]struct{}),
	}
}

func (s *BehaviorSignals) HasInteracted(announcementID string) bool {
	if s == nil {
		return false
	}
	_, ok := s.InteractedAnnouncements[announcementID]
	return ok
}

// InteractedIDs returns the interacted set as a slice for serialization.
func (s *BehaviorSignals) InteractedIDs() []string {
	ids := make([]string, 0, len(s.InteractedAnnouncements))
	for id := range s.InteractedAnnouncements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
