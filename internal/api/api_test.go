package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/validation"
	"appointment-workers/internal/feasibility"
	"appointment-workers/internal/models"
	"appointment-workers/internal/schedule"
	"appointment-workers/internal/sheet"
)

type fakeService struct {
	parser    *schedule.DateParser
	err       error
	lastDate  schedule.Date
	candidate feasibility.Candidate
	refreshed int
}

func (f *fakeService) Parser() *schedule.DateParser { return f.parser }

func (f *fakeService) ParseFilter(raw string) schedule.Date {
	d, _ := f.parser.Parse(raw)
	return d
}

func (f *fakeService) Schedules(_ context.Context, filter schedule.Date) ([]schedule.RoundRecord, error) {
	f.lastDate = filter
	if f.err != nil {
		return nil, f.err
	}
	return []schedule.RoundRecord{{
		RoundKey:           "4-2",
		OpenDate:           schedule.NewDate(2025, time.April, 24),
		SubmissionDeadline: schedule.NewDate(2025, time.April, 21),
	}}, nil
}

func (f *fakeService) CalendarEvents(_ context.Context, filter schedule.Date) ([]schedule.CalendarEvent, error) {
	f.lastDate = filter
	if f.err != nil {
		return nil, f.err
	}
	return []schedule.CalendarEvent{{ID: "1", Date: schedule.NewDate(2025, time.April, 24), Title: "굿리치 - GP 오픈 예정", Type: "goodrich"}}, nil
}

func (f *fakeService) Evaluate(_ context.Context, c feasibility.Candidate) (feasibility.Result, error) {
	f.candidate = c
	if f.err != nil {
		return feasibility.Result{}, f.err
	}
	return feasibility.Result{
		SelectedRound:      "4-2",
		DesiredDate:        c.DesiredDate,
		OpenDate:           schedule.NewDate(2025, time.April, 24),
		SubmissionDeadline: schedule.NewDate(2025, time.April, 21),
		IsPossible:         true,
		Messages:           []string{"위촉 절차를 안내 드릴게요."},
	}, nil
}

func (f *fakeService) Document(_ context.Context, filter schedule.Date) (*models.DataDocument, error) {
	f.lastDate = filter
	if f.err != nil {
		return nil, f.err
	}
	return &models.DataDocument{
		RequiredDocuments: "신분증",
		Checklist:         []schedule.ChecklistItem{{ID: "1", Text: "서류 제출"}},
		Recipients:        []schedule.Recipient{},
		Schedules:         []models.ScheduleView{},
		CalendarEvents:    []models.CalendarEventView{},
	}, nil
}

func (f *fakeService) Refresh(context.Context) (*sheet.Snapshot, error) {
	f.refreshed++
	if f.err != nil {
		return nil, f.err
	}
	return &sheet.Snapshot{ID: "snap-2", FetchedAt: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func newTestRouter(t *testing.T, svc *fakeService, checks map[string]ReadinessCheck) *gin.Engine {
	log := logger.NewTestLogger(t)
	v := validation.NewValidator()
	require.NoError(t, v.Register(FeasibilitySchema, map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"desiredDate"},
		"properties": map[string]interface{}{
			"desiredDate": map[string]interface{}{"type": "string"},
		},
	}))
	return NewRouter(RouterConfig{
		Mode:               gin.TestMode,
		AppointmentHandler: NewAppointmentHandler(svc, v, log),
		ReadinessChecks:    checks,
		Logger:             log,
	})
}

func newFakeService(t *testing.T) *fakeService {
	now := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	return &fakeService{parser: schedule.NewDateParser(logger.NewTestLogger(t), schedule.WithClock(func() time.Time { return now }))}
}

func do(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListSchedules(t *testing.T) {
	svc := newFakeService(t)
	w := do(newTestRouter(t, svc, nil), http.MethodGet, "/api/schedules?date=2025-04-21", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, schedule.NewDate(2025, time.April, 21), svc.lastDate)

	var views []models.ScheduleView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "4-2", views[0].Round)
	assert.Equal(t, "4/24(목)", views[0].GPOpenDate)
	assert.Equal(t, "4/21(월)", views[0].Deadline)
	assert.NotNil(t, views[0].Companies)
}

func TestListCalendarEvents_UnparseableFilterReturnsAll(t *testing.T) {
	svc := newFakeService(t)
	w := do(newTestRouter(t, svc, nil), http.MethodGet, "/api/calendar-events?date=soon", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.lastDate.IsZero())
	assert.Contains(t, w.Body.String(), `"associationRegistrationDate":null`)
}

func TestGetDocument(t *testing.T) {
	w := do(newTestRouter(t, newFakeService(t), nil), http.MethodGet, "/api/data", "")

	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	for _, key := range []string{"requiredDocuments", "checklist", "recipients", "schedules", "calendarEvents"} {
		assert.Contains(t, doc, key)
	}
}

func TestEvaluateFeasibility(t *testing.T) {
	svc := newFakeService(t)
	body := `{"name":"홍길동","desiredDate":"2025-04-10","isAssociationCancelled":true,"certifications":{"life":true},"educationStatus":"new","insuranceChecked":null}`

	w := do(newTestRouter(t, svc, nil), http.MethodPost, "/api/feasibility", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "홍길동", svc.candidate.Name)
	assert.True(t, svc.candidate.ClearanceCompleted)
	assert.False(t, svc.candidate.InsuranceChecked)
	assert.Equal(t, feasibility.TrainingNew, svc.candidate.Training)

	var view models.FeasibilityView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "4-2", view.Round)
	assert.Equal(t, "2025-04-21", view.DeadlineDate)
	assert.True(t, view.IsPossible)
}

func TestEvaluateFeasibility_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"schema violation", `{"name":"홍길동"}`, "INVALID_CANDIDATE_INPUT"},
		{"malformed json", `{"desiredDate":`, "INVALID_CANDIDATE_INPUT"},
		{"unparseable date", `{"desiredDate":"내일모레"}`, "INVALID_CANDIDATE_INPUT"},
		{"bad education status", `{"desiredDate":"2025-04-10","educationStatus":"phd"}`, "INVALID_CANDIDATE_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newTestRouter(t, newFakeService(t), nil), http.MethodPost, "/api/feasibility", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestSourceUnavailableIs503(t *testing.T) {
	svc := newFakeService(t)
	svc.err = apperrors.NewSheetSourceUnavailableError("입력", errors.New("dial tcp: timeout"))
	router := newTestRouter(t, svc, nil)

	for _, target := range []string{"/api/schedules", "/api/calendar-events", "/api/data"} {
		w := do(router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
		assert.Contains(t, w.Body.String(), "SHEET_SOURCE_UNAVAILABLE", target)
	}
}

func TestUnknownErrorIs500(t *testing.T) {
	svc := newFakeService(t)
	svc.err = errors.New("boom")

	w := do(newTestRouter(t, svc, nil), http.MethodGet, "/api/schedules", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestRefreshSnapshot(t *testing.T) {
	svc := newFakeService(t)
	w := do(newTestRouter(t, svc, nil), http.MethodPost, "/api/snapshot/refresh", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.refreshed)
	assert.JSONEq(t, `{"snapshotId":"snap-2","fetchedAt":"2025-04-01T00:00:00Z"}`, w.Body.String())
}

func TestHealthAndReady(t *testing.T) {
	checks := map[string]ReadinessCheck{
		"redis": func(context.Context) error { return nil },
	}
	router := newTestRouter(t, newFakeService(t), checks)

	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"redis":"ok"}}`, w.Body.String())

	checks["zeebe"] = func(context.Context) error { return errors.New("connection refused") }
	w = do(newTestRouter(t, newFakeService(t), checks), http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	w := do(newTestRouter(t, newFakeService(t), nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
