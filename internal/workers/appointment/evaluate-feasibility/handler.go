// internal/workers/appointment/evaluate-feasibility/handler.go
package evaluatefeasibility

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/metrics"
	"appointment-workers/internal/common/validation"
	"appointment-workers/internal/feasibility"
	"appointment-workers/internal/models"
	"appointment-workers/internal/schedule"
)

const (
	TaskType = "evaluate-feasibility"

	// SchemaName is the registry activity whose input schema guards this worker.
	SchemaName = "appointment.feasibility.evaluate"
)

type FeasibilityService interface {
	Parser() *schedule.DateParser
	Evaluate(ctx context.Context, c feasibility.Candidate) (feasibility.Result, error)
}

type Handler struct {
	config     *Config
	service    FeasibilityService
	validator  *validation.Validator
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler accepts a nil validator; input is then only checked by conversion.
func NewHandler(config *Config, service FeasibilityService, validator *validation.Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		service:    service,
		validator:  validator,
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

	if err := h.validate(job.Variables); err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

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

func (h *Handler) validate(variables string) error {
	if h.validator == nil {
		return nil
	}
	res, err := h.validator.ValidateJSON(SchemaName, variables)
	if err != nil {
		return errors.NewInvalidJobVariablesError(err)
	}
	if !res.Valid {
		return errors.NewInvalidCandidateInputError(strings.Join(res.GetErrorMessages(), "; "))
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	candidate, err := input.ToCandidate(h.service.Parser())
	if err != nil {
		return nil, err
	}

	res, err := h.service.Evaluate(ctx, candidate)
	if err != nil {
		return nil, err
	}

	out := &Output{FeasibilityView: models.NewFeasibilityView(res), Verdict: verdictOf(res)}
	h.logger.Info("feasibility evaluated", map[string]interface{}{
		"round":   out.Round,
		"verdict": out.Verdict,
	})
	return out, nil
}

func verdictOf(res feasibility.Result) string {
	switch {
	case res.SelectedRound == "":
		return VerdictNoRound
	case res.IsPossible:
		return VerdictPossible
	default:
		return VerdictAtRisk
	}
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

// Validate runs the registry schema check that Handle applies to raw job variables.
func (h *Handler) Validate(variables string) error {
	return h.validate(variables)
}
