package indexevents

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"appointment-workers/internal/common/config"
	"appointment-workers/internal/common/database"
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

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) BulkIndex(ctx context.Context, index string, docs []database.BulkDocument) (*database.BulkResult, error) {
	args := m.Called(ctx, index, docs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.BulkResult), args.Error(1)
}

func createTestEvents() []schedule.CalendarEvent {
	return []schedule.CalendarEvent{
		{ID: "1", Date: schedule.NewDate(2025, time.May, 7), Title: "굿리치 - GP 오픈 예정", Type: "goodrich", Category: "굿리치", Round: "3-1", Content: "GP 오픈 예정"},
		{ID: "2", Date: schedule.NewDate(2025, time.May, 2), Title: "위촉 삼성생명 - 접수 마감", Type: "company", Category: "위촉", Company: "삼성생명", Content: "접수 마감"},
	}
}

func newTestHandler(t *testing.T, svc EventService, idx Indexer) *Handler {
	h := NewHandler(&Config{Index: "events", Timeout: time.Second}, svc, idx, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC) }
	return h
}

func TestHandler_Execute(t *testing.T) {
	svc := new(MockService)
	svc.On("ParseFilter", "").Return(schedule.Date{})
	svc.On("CalendarEvents", mock.Anything, schedule.Date{}).Return(createTestEvents(), nil)

	idx := new(MockIndexer)
	idx.On("BulkIndex", mock.Anything, "events", mock.MatchedBy(func(docs []database.BulkDocument) bool {
		return len(docs) == 2 && docs[0].ID == DocumentID(createTestEvents()[0])
	})).Return(&database.BulkResult{Indexed: 2}, nil)

	out, err := newTestHandler(t, svc, idx).Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, &Output{Index: "events", Indexed: 2}, out)
	idx.AssertExpectations(t)

	docs := idx.Calls[0].Arguments.Get(2).([]database.BulkDocument)
	raw, err := json.Marshal(docs[1].Source)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "2",
		"date": "2025-05-02",
		"title": "위촉 삼성생명 - 접수 마감",
		"type": "company",
		"category": "위촉",
		"company": "삼성생명",
		"round": "",
		"content": "접수 마감",
		"associationRegistrationDate": null,
		"indexedAt": "2025-05-01T00:00:00Z"
	}`, string(raw))
}

func TestHandler_Execute_IndexOverride(t *testing.T) {
	svc := new(MockService)
	svc.On("ParseFilter", "").Return(schedule.Date{})
	svc.On("CalendarEvents", mock.Anything, schedule.Date{}).Return(createTestEvents(), nil)
	idx := new(MockIndexer)
	idx.On("BulkIndex", mock.Anything, "events-2025", mock.Anything).Return(&database.BulkResult{Indexed: 1, Failed: []string{"x"}}, nil)

	out, err := newTestHandler(t, svc, idx).Execute(context.Background(), &Input{Index: "events-2025"})

	require.NoError(t, err)
	assert.Equal(t, "events-2025", out.Index)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, []string{"x"}, out.FailedIDs)
}

func TestHandler_Execute_Failures(t *testing.T) {
	tests := []struct {
		name   string
		result *database.BulkResult
		err    error
	}{
		{name: "request failed", err: assert.AnError},
		{name: "every document rejected", result: &database.BulkResult{Failed: []string{"a", "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("ParseFilter", "").Return(schedule.Date{})
			svc.On("CalendarEvents", mock.Anything, schedule.Date{}).Return(createTestEvents(), nil)
			idx := new(MockIndexer)
			if tt.err != nil {
				idx.On("BulkIndex", mock.Anything, "events", mock.Anything).Return(nil, tt.err)
			} else {
				idx.On("BulkIndex", mock.Anything, "events", mock.Anything).Return(tt.result, nil)
			}

			_, err := newTestHandler(t, svc, idx).Execute(context.Background(), &Input{})

			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeEventIndexingFailed))
		})
	}
}

func TestHandler_Execute_NoEvents(t *testing.T) {
	svc := new(MockService)
	svc.On("ParseFilter", "12/25").Return(schedule.NewDate(2025, time.December, 25))
	svc.On("CalendarEvents", mock.Anything, mock.Anything).Return([]schedule.CalendarEvent{}, nil)
	idx := new(MockIndexer)
	idx.On("BulkIndex", mock.Anything, "events", []database.BulkDocument{}).Return(&database.BulkResult{}, nil)

	out, err := newTestHandler(t, svc, idx).Execute(context.Background(), &Input{FilterDate: "12/25"})

	require.NoError(t, err)
	assert.Equal(t, 0, out.Indexed)
}

func TestDocumentID(t *testing.T) {
	a := createTestEvents()[0]
	b := a
	b.ID = "99"
	assert.Equal(t, DocumentID(a), DocumentID(b))

	c := a
	c.Content = "GP 오픈 예정 (14:00)"
	assert.NotEqual(t, DocumentID(a), DocumentID(c))
}

func TestDocumentIDs_DuplicateRowsKeepSeparateDocuments(t *testing.T) {
	a := createTestEvents()[0]
	dup := a
	dup.ID = "3"
	other := createTestEvents()[1]

	ids := DocumentIDs([]schedule.CalendarEvent{a, other, dup})

	require.Len(t, ids, 3)
	assert.Equal(t, DocumentID(a), ids[0])
	assert.Equal(t, DocumentID(other), ids[1])
	assert.NotEqual(t, ids[0], ids[2])
	assert.Equal(t, ids, DocumentIDs([]schedule.CalendarEvent{a, other, dup}))
}

func TestLoadConfig(t *testing.T) {
	cfg := LoadConfig(config.WorkerConfig{}, config.ElasticsearchConfig{})
	assert.Equal(t, defaultIndex, cfg.Index)
	assert.Equal(t, 60*time.Second, cfg.Timeout)

	cfg = LoadConfig(config.WorkerConfig{Timeout: 1000}, config.ElasticsearchConfig{EventsIndex: "events"})
	assert.Equal(t, "events", cfg.Index)
	assert.Equal(t, time.Second, cfg.Timeout)
}
