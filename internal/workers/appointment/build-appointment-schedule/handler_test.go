package buildschedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"appointment-workers/internal/common/config"
	"appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/schedule"
	"appointment-workers/internal/sheet"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ParseFilter(raw string) schedule.Date {
	return m.Called(raw).Get(0).(schedule.Date)
}

func (m *MockService) ScheduleSnapshot(ctx context.Context, filter schedule.Date) ([]schedule.RoundRecord, string, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]schedule.RoundRecord), args.String(1), args.Error(2)
}

func (m *MockService) Refresh(ctx context.Context) (*sheet.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sheet.Snapshot), args.Error(1)
}

func createTestRounds() []schedule.RoundRecord {
	return []schedule.RoundRecord{
		{
			RoundKey:           "3-1",
			OpenDate:           schedule.NewDate(2025, time.May, 7),
			OpenTime:           "14:00",
			SubmissionDeadline: schedule.NewDate(2025, time.May, 4),
			Organizations: []schedule.OrganizationEntry{
				{Name: "삼성생명", RoundKey: "3-1", SubmissionDeadline: schedule.NewDate(2025, time.May, 2), ContactMemo: "온라인 접수", ContactPerson: "김담당"},
			},
		},
	}
}

func newTestHandler(t *testing.T, svc ScheduleService) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, svc, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	filter := schedule.NewDate(2025, time.May, 4)

	tests := []struct {
		name     string
		input    *Input
		setup    func(*MockService)
		validate func(*testing.T, *Output)
	}{
		{
			name:  "builds unfiltered schedule",
			input: &Input{},
			setup: func(m *MockService) {
				m.On("ParseFilter", "").Return(schedule.Date{})
				m.On("ScheduleSnapshot", mock.Anything, schedule.Date{}).Return(createTestRounds(), "snap-0", nil)
			},
			validate: func(t *testing.T, out *Output) {
				require.Len(t, out.Schedules, 1)
				assert.Equal(t, 1, out.RoundCount)
				assert.Equal(t, "3-1", out.Schedules[0].Round)
				assert.Equal(t, "5/7(수)", out.Schedules[0].GPOpenDate)
				assert.Equal(t, "14:00", out.Schedules[0].GPOpenTime)
				assert.Equal(t, "5/4(일)", out.Schedules[0].Deadline)
				require.Len(t, out.Schedules[0].Companies, 1)
				assert.Equal(t, "온라인 접수", out.Schedules[0].Companies[0].RecruitmentMethod)
				assert.Equal(t, "snap-0", out.SnapshotID)
			},
		},
		{
			name:  "passes the parsed filter",
			input: &Input{FilterDate: "5/4"},
			setup: func(m *MockService) {
				m.On("ParseFilter", "5/4").Return(filter)
				m.On("ScheduleSnapshot", mock.Anything, filter).Return(createTestRounds(), "snap-0", nil)
			},
			validate: func(t *testing.T, out *Output) {
				assert.Equal(t, 1, out.RoundCount)
			},
		},
		{
			name:  "empty registry yields empty list",
			input: &Input{FilterDate: "2025-12-25"},
			setup: func(m *MockService) {
				m.On("ParseFilter", "2025-12-25").Return(schedule.NewDate(2025, time.December, 25))
				m.On("ScheduleSnapshot", mock.Anything, mock.Anything).Return([]schedule.RoundRecord{}, "snap-0", nil)
			},
			validate: func(t *testing.T, out *Output) {
				assert.NotNil(t, out.Schedules)
				assert.Empty(t, out.Schedules)
				assert.Equal(t, 0, out.RoundCount)
			},
		},
		{
			name:  "refresh reloads before building",
			input: &Input{Refresh: true},
			setup: func(m *MockService) {
				m.On("Refresh", mock.Anything).Return(&sheet.Snapshot{ID: "snap-1"}, nil)
				m.On("ParseFilter", "").Return(schedule.Date{})
				m.On("ScheduleSnapshot", mock.Anything, schedule.Date{}).Return(createTestRounds(), "snap-1", nil)
			},
			validate: func(t *testing.T, out *Output) {
				assert.Equal(t, "snap-1", out.SnapshotID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setup(svc)

			out, err := newTestHandler(t, svc).Execute(context.Background(), tt.input)

			require.NoError(t, err)
			tt.validate(t, out)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Execute_SourceUnavailable(t *testing.T) {
	svc := new(MockService)
	svc.On("ParseFilter", "").Return(schedule.Date{})
	svc.On("ScheduleSnapshot", mock.Anything, schedule.Date{}).
		Return(nil, "", errors.NewSheetSourceUnavailableError("입력", assert.AnError))

	out, err := newTestHandler(t, svc).Execute(context.Background(), &Input{})

	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSheetSourceUnavailable))
}

func TestHandler_Execute_RefreshFailureSkipsBuild(t *testing.T) {
	svc := new(MockService)
	svc.On("Refresh", mock.Anything).Return(nil, errors.NewSheetSourceUnavailableError("설정", assert.AnError))

	_, err := newTestHandler(t, svc).Execute(context.Background(), &Input{Refresh: true})

	require.Error(t, err)
	svc.AssertNotCalled(t, "ScheduleSnapshot", mock.Anything, mock.Anything)
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 30*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 5*time.Second, LoadConfig(config.WorkerConfig{Timeout: 5000}).Timeout)
}
