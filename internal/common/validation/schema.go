package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var activityIDPattern = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator compiles JSON schemas once and validates documents against them by name.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{schemas: make(map[string]*gojsonschema.Schema)}
}

// Register compiles schema (a decoded JSON schema document) under name.
func (v *Validator) Register(name string, schema map[string]interface{}) error {
	if len(schema) == 0 {
		return fmt.Errorf("schema for %s is empty", name)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", name, err)
	}
	v.mu.Lock()
	v.schemas[name] = compiled
	v.mu.Unlock()
	return nil
}

func (v *Validator) Has(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// Validate checks a Go value (typically a decoded JSON object). Unknown names
// validate as true.
func (v *Validator) Validate(name string, document interface{}) (*ValidationResult, error) {
	return v.validate(name, gojsonschema.NewGoLoader(document))
}

// ValidateJSON checks a raw JSON document such as Zeebe job variables.
func (v *Validator) ValidateJSON(name, document string) (*ValidationResult, error) {
	return v.validate(name, gojsonschema.NewStringLoader(document))
}

func (v *Validator) validate(name string, loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	v.mu.RLock()
	schema, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return &ValidationResult{Valid: true}, nil
	}

	res, err := schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", name, err)
	}
	return toResult(res), nil
}

// ValidateInput validates input against a one-off schema.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validate input: %w", err)
	}
	return toResult(res), nil
}

func toResult(res *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		field := e.Field()
		if field == "(root)" {
			if prop, ok := e.Details()["property"].(string); ok && prop != "" {
				field = prop
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: e.Description(),
			Code:    errorCode(e.Type()),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out
}

func errorCode(kind string) string {
	switch kind {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "additional_property_not_allowed":
		return "EXTRA_FIELD"
	case "invalid_type":
		return "INVALID_TYPE"
	case "enum":
		return "INVALID_ENUM_VALUE"
	case "pattern":
		return "PATTERN_MISMATCH"
	case "string_gte":
		return "MIN_LENGTH_VIOLATION"
	case "string_lte":
		return "MAX_LENGTH_VIOLATION"
	default:
		return strings.ToUpper(kind)
	}
}

// ValidateActivityNaming checks the domain.subdomain.action form of registry ids.
func ValidateActivityNaming(activityID string) error {
	if !activityIDPattern.MatchString(activityID) {
		return fmt.Errorf("activity ID must follow format: domain.subdomain.action (e.g., appointment.schedule.build)")
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a field and its nested members.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
