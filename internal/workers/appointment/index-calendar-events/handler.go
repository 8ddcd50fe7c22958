// internal/workers/appointment/index-calendar-events/handler.go
package indexevents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"appointment-workers/internal/common/database"
	"appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/metrics"
	"appointment-workers/internal/models"
	"appointment-workers/internal/schedule"
)

const (
	TaskType = "index-calendar-events"
)

// eventNamespace scopes document ids so the same row always maps to the same id.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("appointment-workers/calendar-events"))

type EventService interface {
	ParseFilter(raw string) schedule.Date
	CalendarEvents(ctx context.Context, filter schedule.Date) ([]schedule.CalendarEvent, error)
}

// Indexer is satisfied by *database.ElasticsearchClient.
type Indexer interface {
	BulkIndex(ctx context.Context, index string, docs []database.BulkDocument) (*database.BulkResult, error)
}

type Handler struct {
	config     *Config
	service    EventService
	indexer    Indexer
	now        func() time.Time
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, service EventService, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		service:    service,
		indexer:    indexer,
		now:        time.Now,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewInvalidJobVariablesError(err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	index := input.Index
	if index == "" {
		index = h.config.Index
	}

	events, err := h.service.CalendarEvents(ctx, h.service.ParseFilter(input.FilterDate))
	if err != nil {
		return nil, err
	}

	indexedAt := h.now().UTC().Format(time.RFC3339)
	ids := DocumentIDs(events)
	docs := make([]database.BulkDocument, 0, len(events))
	for i, e := range events {
		docs = append(docs, database.BulkDocument{
			ID:     ids[i],
			Source: EventDocument{CalendarEventView: models.NewCalendarEventView(e), IndexedAt: indexedAt},
		})
	}

	res, err := h.indexer.BulkIndex(ctx, index, docs)
	if err != nil {
		return nil, errors.NewEventIndexingFailedError(index, err)
	}
	if len(docs) > 0 && res.Indexed == 0 {
		return nil, errors.NewEventIndexingFailedError(index,
			fmt.Errorf("all %d documents rejected", len(res.Failed)))
	}
	if len(res.Failed) > 0 {
		h.logger.Warn("some calendar events were not indexed", map[string]interface{}{
			"index":  index,
			"failed": len(res.Failed),
		})
	}

	return &Output{
		Index:     index,
		Indexed:   res.Indexed,
		Failed:    len(res.Failed),
		FailedIDs: res.Failed,
	}, nil
}

// DocumentID derives a stable id from the row content. The projected event id
// is positional and changes whenever rows are inserted above it.
func DocumentID(e schedule.CalendarEvent) string {
	return uuid.NewSHA1(eventNamespace, []byte(contentKey(e))).String()
}

// DocumentIDs assigns ids in event order. Repeats of identical content get
// their occurrence number folded in so every row keeps its own document.
func DocumentIDs(events []schedule.CalendarEvent) []string {
	ids := make([]string, len(events))
	seen := make(map[string]int, len(events))
	for i, e := range events {
		key := contentKey(e)
		n := seen[key]
		seen[key] = n + 1
		if n > 0 {
			key = key + "\x1f#" + strconv.Itoa(n)
		}
		ids[i] = uuid.NewSHA1(eventNamespace, []byte(key)).String()
	}
	return ids
}

func contentKey(e schedule.CalendarEvent) string {
	return strings.Join([]string{e.Date.ISO(), e.Category, e.Company, e.Round, e.Content}, "\x1f")
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	code := string(errors.ErrCodeInternal)
	if std, ok := errors.AsStandard(err); ok {
		code = string(std.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
