// pkg/registry/schema.go
package registry

// ActivityRegistry is the catalogue of recommendation job types loaded from
// configs/activity-registry.json. The worker manager compiles the input
// schema of each implemented entry and validates job variables against it.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one job type: the Zeebe task type a worker subscribes
// to, the JSON Schema its variables must satisfy and the error codes it may
// throw. Timeout is a Go duration string such as "30s".
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema,omitempty"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows,omitempty"`
	Tags                 []string               `json:"tags,omitempty"`
}

// Implemented reports whether a worker exists for the activity. Planned
// entries are listed but never get an input schema.
func (a Activity) Implemented() bool {
	return a.ImplementationStatus == StatusImplemented
}

// Values of Activity.ImplementationStatus.
const (
	StatusImplemented = "implemented"
	StatusPlanned     = "planned"
)
