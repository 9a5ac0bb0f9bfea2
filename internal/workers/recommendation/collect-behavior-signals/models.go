// internal/workers/recommendation/collect-behavior-signals/models.go
package collectbehaviorsignals

type Input struct {
	UserID     string `json:"userId"`
	WindowDays int    `json:"windowDays,omitempty"`
}

type Output struct {
	CategoryPreferences       map[string]float64 `json:"categoryPreferences"`
	OrganizationPreferences   map[string]float64 `json:"organizationPreferences"`
	InteractedAnnouncementIDs []string           `json:"interactedAnnouncementIds"`
	Degraded                  bool               `json:"degraded"`
}
