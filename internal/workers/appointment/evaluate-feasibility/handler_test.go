package evaluatefeasibility

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/validation"
	"appointment-workers/internal/feasibility"
	"appointment-workers/internal/schedule"
)

type MockService struct {
	mock.Mock
	parser *schedule.DateParser
}

func (m *MockService) Parser() *schedule.DateParser {
	return m.parser
}

func (m *MockService) Evaluate(ctx context.Context, c feasibility.Candidate) (feasibility.Result, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(feasibility.Result), args.Error(1)
}

func newMockService(t *testing.T) *MockService {
	now := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	return &MockService{
		parser: schedule.NewDateParser(logger.NewTestLogger(t), schedule.WithClock(func() time.Time { return now })),
	}
}

func testSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"desiredDate"},
		"properties": map[string]interface{}{
			"name":        map[string]interface{}{"type": "string"},
			"desiredDate": map[string]interface{}{"type": "string", "minLength": 3},
			"educationStatus": map[string]interface{}{
				"type": []interface{}{"string", "null"},
				"enum": []interface{}{"none", "new", "experienced", "", nil},
			},
			"isAssociationCancelled": map[string]interface{}{"type": []interface{}{"boolean", "null"}},
		},
	}
}

func newTestHandler(t *testing.T, svc FeasibilityService) *Handler {
	v := validation.NewValidator()
	require.NoError(t, v.Register(SchemaName, testSchema()))
	return NewHandler(&Config{Timeout: time.Second}, svc, v, logger.NewTestLogger(t))
}

func decodeInput(t *testing.T, raw string) *Input {
	var in Input
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	return &in
}

func TestHandler_Execute_Possible(t *testing.T) {
	svc := newMockService(t)
	svc.On("Evaluate", mock.Anything, mock.MatchedBy(func(c feasibility.Candidate) bool {
		return c.Name == "홍길동" &&
			c.DesiredDate == schedule.NewDate(2025, time.April, 10) &&
			c.NoticeSentDate == schedule.NewDate(2025, time.April, 1) &&
			c.Certifications.NonLife &&
			c.Training == feasibility.TrainingNew
	})).Return(feasibility.Result{
		SelectedRound:      "4-2",
		OpenDate:           schedule.NewDate(2025, time.April, 24),
		SubmissionDeadline: schedule.NewDate(2025, time.April, 21),
		ClearanceDeadline:  schedule.NewDate(2025, time.April, 7),
		TrainingDeadline:   schedule.NewDate(2025, time.April, 11),
		NoticeMailDeadline: schedule.NewDate(2025, time.April, 5),
		IsPossible:         true,
		Messages:           []string{"홍길동님, 굿리치 위촉을 2025년 04월 10일 (목) 원하시는군요."},
	}, nil)

	in := decodeInput(t, `{
		"name": "홍길동",
		"desiredDate": "2025-04-10",
		"certProofSentDate": "2025. 4. 1",
		"certifications": {"life": true, "damage": true},
		"educationStatus": "new"
	}`)

	out, err := newTestHandler(t, svc).Execute(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, VerdictPossible, out.Verdict)
	assert.Equal(t, "4-2", out.Round)
	assert.Equal(t, "2025-04-21", out.DeadlineDate)
	assert.Equal(t, "2025-04-07", out.AssociationDeadline)
	assert.Equal(t, "2025-04-05", out.NoticeMailDeadline)
	assert.True(t, out.IsPossible)
	svc.AssertExpectations(t)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	assert.Equal(t, true, vars["isPossible"])
	assert.Equal(t, "possible", vars["verdict"])
	assert.Equal(t, "4-2", vars["round"])
}

func TestHandler_Execute_NoRound(t *testing.T) {
	svc := newMockService(t)
	svc.On("Evaluate", mock.Anything, mock.Anything).Return(feasibility.Result{
		DesiredDate: schedule.NewDate(2025, time.April, 10),
		Messages:    []string{"다른 위촉일정을 확인해 볼까요?"},
	}, nil)

	out, err := newTestHandler(t, svc).Execute(context.Background(), decodeInput(t, `{"desiredDate":"4/10"}`))

	require.NoError(t, err)
	assert.Equal(t, VerdictNoRound, out.Verdict)
	assert.Empty(t, out.Round)
	assert.Equal(t, "2025년 04월 10일 (목)", out.GPOpenDate)
	assert.Empty(t, out.DeadlineDate)
	assert.False(t, out.IsPossible)
}

func TestHandler_Execute_AtRisk(t *testing.T) {
	svc := newMockService(t)
	svc.On("Evaluate", mock.Anything, mock.Anything).Return(feasibility.Result{SelectedRound: "5-1"}, nil)

	out, err := newTestHandler(t, svc).Execute(context.Background(), decodeInput(t, `{"desiredDate":"2025-05-01"}`))

	require.NoError(t, err)
	assert.Equal(t, VerdictAtRisk, out.Verdict)
	assert.NotNil(t, out.Messages)
}

func TestHandler_Execute_InvalidCandidate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unparseable desired date", `{"desiredDate":"다음 달쯤"}`},
		{"unparseable notice date", `{"desiredDate":"2025-04-10","certProofSentDate":"어제"}`},
		{"unknown education status", `{"desiredDate":"2025-04-10","educationStatus":"phd"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMockService(t)

			_, err := newTestHandler(t, svc).Execute(context.Background(), decodeInput(t, tt.raw))

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidCandidateInput))
			svc.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Execute_SourceUnavailable(t *testing.T) {
	svc := newMockService(t)
	svc.On("Evaluate", mock.Anything, mock.Anything).
		Return(feasibility.Result{}, errors.NewSheetSourceUnavailableError("입력", assert.AnError))

	_, err := newTestHandler(t, svc).Execute(context.Background(), decodeInput(t, `{"desiredDate":"2025-04-10"}`))

	require.Error(t, err)
	std, ok := errors.AsStandard(err)
	require.True(t, ok)
	assert.True(t, std.Retryable)
}

func TestHandler_Validate(t *testing.T) {
	h := newTestHandler(t, newMockService(t))

	tests := []struct {
		name     string
		raw      string
		wantErr  bool
		contains string
	}{
		{name: "valid", raw: `{"desiredDate":"2025-04-10","educationStatus":"none"}`},
		{name: "null education status", raw: `{"desiredDate":"2025-04-10","educationStatus":null}`},
		{name: "extra process variables allowed", raw: `{"desiredDate":"2025-04-10","processStartedBy":"ui"}`},
		{name: "missing desired date", raw: `{"name":"홍길동"}`, wantErr: true, contains: "desiredDate"},
		{name: "bad enum", raw: `{"desiredDate":"2025-04-10","educationStatus":"phd"}`, wantErr: true, contains: "educationStatus"},
		{name: "wrong type", raw: `{"desiredDate":"2025-04-10","isAssociationCancelled":"yes"}`, wantErr: true, contains: "isAssociationCancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Validate(tt.raw)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidCandidateInput))
			std, _ := errors.AsStandard(err)
			assert.Contains(t, std.Details, tt.contains)
		})
	}
}

func TestHandler_Validate_NilValidator(t *testing.T) {
	h := NewHandler(&Config{Timeout: time.Second}, newMockService(t), nil, logger.NewTestLogger(t))
	assert.NoError(t, h.Validate(`{}`))
}

func TestHandler_Validate_MalformedJSON(t *testing.T) {
	err := newTestHandler(t, newMockService(t)).Validate(`{not json`)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidJobVariables))
}
