// internal/workers/appointment/build-appointment-schedule/handler.go
package buildschedule

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/metrics"
	"appointment-workers/internal/models"
	"appointment-workers/internal/schedule"
	"appointment-workers/internal/sheet"
)

const (
	TaskType = "build-appointment-schedule"
)

// ScheduleService is satisfied by *appointment.Service.
type ScheduleService interface {
	ParseFilter(raw string) schedule.Date
	ScheduleSnapshot(ctx context.Context, filter schedule.Date) ([]schedule.RoundRecord, string, error)
	Refresh(ctx context.Context) (*sheet.Snapshot, error)
}

type Handler struct {
	config     *Config
	service    ScheduleService
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, service ScheduleService, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		service:    service,
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
	if input.Refresh {
		if _, err := h.service.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	rounds, snapshotID, err := h.service.ScheduleSnapshot(ctx, h.service.ParseFilter(input.FilterDate))
	if err != nil {
		return nil, err
	}

	h.logger.Debug("schedule built", map[string]interface{}{
		"rounds":     len(rounds),
		"filter":     input.FilterDate,
		"snapshotId": snapshotID,
	})
	return &Output{
		Schedules:  models.NewScheduleViews(rounds),
		RoundCount: len(rounds),
		SnapshotID: snapshotID,
	}, nil
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
