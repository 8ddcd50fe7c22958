package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const candidateSchema = `{
	"type": "object",
	"required": ["desiredDate"],
	"properties": {
		"name": {"type": "string", "maxLength": 50},
		"desiredDate": {"type": "string", "minLength": 3},
		"educationStatus": {"type": ["string", "null"], "enum": ["none", "new", "experienced", null]},
		"certifications": {
			"type": "object",
			"properties": {
				"life": {"type": "boolean"}
			}
		}
	}
}`

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Register("evaluate-feasibility", decode(t, candidateSchema)))
	assert.True(t, v.Has("evaluate-feasibility"))

	tests := []struct {
		name      string
		input     string
		valid     bool
		wantField string
		wantCode  string
	}{
		{name: "valid", input: `{"desiredDate": "2025-04-10", "educationStatus": "new"}`, valid: true},
		{name: "null education", input: `{"desiredDate": "2025-04-10", "educationStatus": null}`, valid: true},
		{name: "missing date", input: `{"name": "홍길동"}`, wantField: "desiredDate", wantCode: "REQUIRED_FIELD_MISSING"},
		{name: "bad enum", input: `{"desiredDate": "4/10", "educationStatus": "phd"}`, wantField: "educationStatus", wantCode: "INVALID_ENUM_VALUE"},
		{name: "nested type", input: `{"desiredDate": "4/10", "certifications": {"life": "yes"}}`, wantField: "certifications.life", wantCode: "INVALID_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateJSON("evaluate-feasibility", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.True(t, res.HasErrors(tt.wantField), "%v", res.Errors)
				assert.Equal(t, tt.wantCode, res.GetErrorsForField(tt.wantField)[0].Code)
			}
		})
	}
}

func TestValidator_UnknownNameIsValid(t *testing.T) {
	res, err := NewValidator().Validate("nope", map[string]interface{}{"x": 1})
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidator_RegisterRejectsBadSchema(t *testing.T) {
	v := NewValidator()
	assert.Error(t, v.Register("empty", nil))
	assert.Error(t, v.Register("broken", map[string]interface{}{"type": 12}))
}

func TestValidateInput(t *testing.T) {
	res, err := ValidateInput(map[string]interface{}{"desiredDate": "ab"}, decode(t, candidateSchema))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"desiredDate: String length must be greater than or equal to 3"}, res.GetErrorMessages())
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("appointment.schedule.build"))
	assert.Error(t, ValidateActivityNaming("build-appointment-schedule"))
	assert.Error(t, ValidateActivityNaming("Appointment.Schedule.Build"))
}
