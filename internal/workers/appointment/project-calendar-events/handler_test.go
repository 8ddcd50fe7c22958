package projectevents

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
	"appointment-workers/internal/schedule"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ParseFilter(raw string) schedule.Date {
	return m.Called(raw).Get(0).(schedule.Date)
}

func (m *MockService) CalendarEvents(ctx context.Context, filter schedule.Date) ([]schedule.CalendarEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schedule.CalendarEvent), args.Error(1)
}

func createTestEvents() []schedule.CalendarEvent {
	return []schedule.CalendarEvent{
		{ID: "1", Date: schedule.NewDate(2025, time.May, 7), Title: "굿리치 - GP 오픈 예정", Type: "goodrich", Category: "굿리치", Round: "3-1", Content: "GP 오픈 예정"},
		{ID: "2", Date: schedule.NewDate(2025, time.May, 2), Title: "위촉 삼성생명 - 접수 마감", Type: "company", Category: "위촉", Company: "삼성생명", Content: "접수 마감"},
		{
			ID:                          "3",
			Date:                        schedule.NewDate(2025, time.May, 5),
			Title:                       "협회 - 생명보험협회 등록일 5/9",
			Type:                        "goodrich",
			Category:                    "협회",
			Content:                     "생명보험협회 등록일 5/9",
			AssociationRegistrationDate: schedule.NewDate(2025, time.May, 9),
		},
	}
}

func TestHandler_Execute(t *testing.T) {
	svc := new(MockService)
	svc.On("ParseFilter", "").Return(schedule.Date{})
	svc.On("CalendarEvents", mock.Anything, schedule.Date{}).Return(createTestEvents(), nil)

	h := NewHandler(&Config{Timeout: time.Second}, svc, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, 3, out.EventCount)
	assert.Equal(t, map[string]int{"goodrich": 2, "company": 1}, out.CountsByType)
	require.Len(t, out.CalendarEvents, 3)
	assert.Equal(t, "2025-05-07", out.CalendarEvents[0].Date)
	assert.Nil(t, out.CalendarEvents[0].AssociationRegistrationDate)
	require.NotNil(t, out.CalendarEvents[2].AssociationRegistrationDate)
	assert.Equal(t, "2025-05-09", *out.CalendarEvents[2].AssociationRegistrationDate)

	raw, err := json.Marshal(out.CalendarEvents[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"associationRegistrationDate":null`)
}

func TestHandler_Execute_FilteredEmpty(t *testing.T) {
	filter := schedule.NewDate(2025, time.December, 25)
	svc := new(MockService)
	svc.On("ParseFilter", "12/25").Return(filter)
	svc.On("CalendarEvents", mock.Anything, filter).Return([]schedule.CalendarEvent{}, nil)

	h := NewHandler(&Config{Timeout: time.Second}, svc, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{FilterDate: "12/25"})

	require.NoError(t, err)
	assert.NotNil(t, out.CalendarEvents)
	assert.Empty(t, out.CalendarEvents)
	assert.Equal(t, 0, out.EventCount)
}

func TestHandler_Execute_SourceUnavailable(t *testing.T) {
	svc := new(MockService)
	svc.On("ParseFilter", "").Return(schedule.Date{})
	svc.On("CalendarEvents", mock.Anything, schedule.Date{}).
		Return(nil, errors.NewSheetSourceUnavailableError("입력", assert.AnError))

	h := NewHandler(&Config{Timeout: time.Second}, svc, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), &Input{})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSheetSourceUnavailable))
}
