// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/validation"
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

func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
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

func (r *ActivityRegistry) Add(a Activity, now time.Time) error {
	if _, exists := r.Find(a.ID); exists {
		return fmt.Errorf("activity with ID %s already exists", a.ID)
	}
	r.Activities = append(r.Activities, a)
	r.LastUpdated = now.UTC().Format(time.RFC3339)
	return nil
}

// Update sets one scalar field of an activity.
func (r *ActivityRegistry) Update(id, field, value string, now time.Time) error {
	a, ok := r.Find(id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", id)
	}
	switch field {
	case "status":
		if !validStatus(value) {
			return fmt.Errorf("invalid status %q", value)
		}
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		a.Timeout = value
	case "retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid retries %q", value)
		}
		a.Retries = n
	case "description":
		a.Description = value
	default:
		return fmt.Errorf("unsupported field %q", field)
	}
	r.LastUpdated = now.UTC().Format(time.RFC3339)
	return nil
}

// Validate returns every problem found; an empty slice means the registry is usable.
func (r *ActivityRegistry) Validate() []error {
	var problems []error
	ids := map[string]bool{}
	taskTypes := map[string]bool{}

	for _, a := range r.Activities {
		if err := validation.ValidateActivityNaming(a.ID); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", a.ID, err))
		}
		if ids[a.ID] {
			problems = append(problems, fmt.Errorf("%s: duplicate activity id", a.ID))
		}
		ids[a.ID] = true

		if a.TaskType == "" {
			problems = append(problems, fmt.Errorf("%s: taskType is required", a.ID))
		} else if taskTypes[a.TaskType] {
			problems = append(problems, fmt.Errorf("%s: duplicate taskType %s", a.ID, a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if !validStatus(a.ImplementationStatus) {
			problems = append(problems, fmt.Errorf("%s: invalid implementationStatus %q", a.ID, a.ImplementationStatus))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Errorf("%s: invalid timeout %q", a.ID, a.Timeout))
			}
		}
		for _, code := range a.ErrorCodes {
			if _, known := errors.BPMNErrorMapping[errors.ErrorCode(code)]; !known && code != string(errors.ErrCodeInternal) {
				problems = append(problems, fmt.Errorf("%s: unknown error code %s", a.ID, code))
			}
		}
		if len(a.InputSchema) > 0 {
			if err := validation.NewValidator().Register(a.ID, a.InputSchema); err != nil {
				problems = append(problems, fmt.Errorf("%s: %w", a.ID, err))
			}
		}
	}
	return problems
}

// RegisterSchemas compiles every non-empty input schema into v under the activity id.
func (r *ActivityRegistry) RegisterSchemas(v *validation.Validator) ([]string, error) {
	var registered []string
	for _, a := range r.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		if err := v.Register(a.ID, a.InputSchema); err != nil {
			return registered, err
		}
		registered = append(registered, a.ID)
	}
	sort.Strings(registered)
	return registered, nil
}

func validStatus(s string) bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusVerified:
		return true
	}
	return false
}
