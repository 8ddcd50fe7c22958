package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointment-workers/internal/common/validation"
)

var fixedNow = time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)

func loadShipped(t *testing.T) *ActivityRegistry {
	t.Helper()
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	return reg
}

func TestShippedRegistryIsValid(t *testing.T) {
	reg := loadShipped(t)

	assert.Empty(t, reg.Validate())

	for _, taskType := range []string{
		"build-appointment-schedule",
		"project-calendar-events",
		"evaluate-feasibility",
		"send-feasibility-notice",
		"index-calendar-events",
	} {
		_, ok := reg.FindByTaskType(taskType)
		assert.True(t, ok, taskType)
	}
}

func TestRegisterSchemas(t *testing.T) {
	reg := loadShipped(t)
	v := validation.NewValidator()

	ids, err := reg.RegisterSchemas(v)
	require.NoError(t, err)
	assert.Len(t, ids, 5)
	assert.True(t, v.Has("appointment.feasibility.evaluate"))

	res, err := v.Validate("appointment.feasibility.evaluate", map[string]interface{}{"name": "홍길동"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("desiredDate"))

	res, err = v.Validate("appointment.feasibility.evaluate", map[string]interface{}{
		"desiredDate":     "2025-05-01",
		"educationStatus": nil,
	})
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())
}

func TestSaveAndReload(t *testing.T) {
	reg := loadShipped(t)
	require.NoError(t, reg.Update("appointment.calendar.index", "status", StatusVerified, fixedNow))

	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, reg.Save(path))

	reloaded, err := LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reloaded.Find("appointment.calendar.index")
	require.True(t, ok)
	assert.Equal(t, StatusVerified, a.ImplementationStatus)
	assert.Equal(t, "2025-04-01T09:00:00Z", reloaded.LastUpdated)
}

func TestAdd(t *testing.T) {
	reg := &ActivityRegistry{}
	a := Activity{ID: "appointment.notice.resend", TaskType: "resend-notice", ImplementationStatus: StatusPlanned}

	require.NoError(t, reg.Add(a, fixedNow))
	assert.Len(t, reg.Activities, 1)
	assert.Error(t, reg.Add(a, fixedNow))
}

func TestUpdate(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{{ID: "appointment.schedule.build", TaskType: "build-appointment-schedule"}}}

	require.NoError(t, reg.Update("appointment.schedule.build", "timeout", "45s", fixedNow))
	require.NoError(t, reg.Update("appointment.schedule.build", "retries", "5", fixedNow))
	a, _ := reg.Find("appointment.schedule.build")
	assert.Equal(t, "45s", a.Timeout)
	assert.Equal(t, 5, a.Retries)

	assert.Error(t, reg.Update("appointment.schedule.build", "status", "done", fixedNow))
	assert.Error(t, reg.Update("appointment.schedule.build", "timeout", "soon", fixedNow))
	assert.Error(t, reg.Update("appointment.schedule.build", "retries", "-1", fixedNow))
	assert.Error(t, reg.Update("appointment.schedule.build", "owner", "x", fixedNow))
	assert.Error(t, reg.Update("missing.activity.id", "version", "2.0.0", fixedNow))
}

func TestValidateReportsProblems(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "Bad-Id", TaskType: "a", ImplementationStatus: StatusPlanned},
		{ID: "appointment.schedule.build", TaskType: "a", ImplementationStatus: "unknown", Timeout: "later"},
		{ID: "appointment.schedule.build", ImplementationStatus: StatusCompleted, ErrorCodes: []string{"NOPE"}},
		{
			ID:                   "appointment.notice.send",
			TaskType:             "send",
			ImplementationStatus: StatusCompleted,
			InputSchema:          map[string]interface{}{"type": 12},
		},
	}}

	problems := reg.Validate()

	var msgs []string
	for _, p := range problems {
		msgs = append(msgs, p.Error())
	}
	assert.Len(t, problems, 8, msgs)
	assert.Contains(t, msgs, "appointment.schedule.build: duplicate activity id")
	assert.Contains(t, msgs, "appointment.schedule.build: duplicate taskType a")
	assert.Contains(t, msgs, "appointment.schedule.build: unknown error code NOPE")
}
