// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"grant-workers/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry with activities sorted by ID and stamps
// LastUpdated.
func (r *ActivityRegistry) Save(path string) error {
	sort.Slice(r.Activities, func(i, j int) bool {
		return r.Activities[i].ID < r.Activities[j].ID
	})
	r.LastUpdated = time.Now().UTC().Format("2006-01-02")

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func (r *ActivityRegistry) Find(id string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Add appends an activity after validating it. Duplicate IDs or task types
// are rejected.
func (r *ActivityRegistry) Add(a Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := r.Find(a.ID); ok {
		return fmt.Errorf("activity %s already registered", a.ID)
	}
	if _, ok := r.FindByTaskType(a.TaskType); ok {
		return fmt.Errorf("task type %s already registered", a.TaskType)
	}
	r.Activities = append(r.Activities, a)
	return nil
}

// Validate checks every activity and returns one message per problem.
func (r *ActivityRegistry) Validate() []string {
	var problems []string
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)

	for _, a := range r.Activities {
		if err := a.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", a.ID, err))
		}
		if ids[a.ID] {
			problems = append(problems, fmt.Sprintf("%s: duplicate id", a.ID))
		}
		if a.TaskType != "" && taskTypes[a.TaskType] {
			problems = append(problems, fmt.Sprintf("%s: duplicate task type %s", a.ID, a.TaskType))
		}
		ids[a.ID] = true
		taskTypes[a.TaskType] = true
	}
	return problems
}

func (a Activity) Validate() error {
	if err := validation.ValidateActivityNaming(a.ID); err != nil {
		return err
	}
	if a.TaskType == "" {
		return fmt.Errorf("taskType is required")
	}
	if a.Timeout != "" {
		if _, err := time.ParseDuration(a.Timeout); err != nil {
			return fmt.Errorf("timeout %q: %w", a.Timeout, err)
		}
	}
	if a.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if _, err := validation.CompileSchema(a.InputSchema); err != nil {
		return fmt.Errorf("inputSchema: %w", err)
	}
	if len(a.OutputSchema) > 0 {
		if _, err := validation.CompileSchema(a.OutputSchema); err != nil {
			return fmt.Errorf("outputSchema: %w", err)
		}
	}
	return nil
}

// InputSchemas compiles the input schema of every implemented activity,
// keyed by task type.
func (r *ActivityRegistry) InputSchemas() (map[string]*validation.Schema, error) {
	schemas := make(map[string]*validation.Schema)
	for _, a := range r.Activities {
		if !a.Implemented() {
			continue
		}
		s, err := validation.CompileSchema(a.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.ID, err)
		}
		schemas[a.TaskType] = s
	}
	return schemas, nil
}
