// internal/workers/appointment/send-feasibility-notice/handler.go
package sendnotice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/metrics"
)

const (
	TaskType = "send-feasibility-notice"
)

// EmailSender is satisfied by *aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, to []string, subject, body string) (string, error)
}

// SMSSender is satisfied by *aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Handler struct {
	config     *Config
	email      EmailSender
	sms        SMSSender
	now        func() time.Time
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler accepts nil senders for channels that are not configured.
func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		email:      email,
		sms:        sms,
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

// execute fails only when every attempted channel failed. A partial delivery
// completes with StatusPartial.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       []string{},
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	var (
		attempted int
		lastErr   error
		lastChan  string
	)

	if h.config.EmailEnabled && h.email != nil && input.RecipientEmail != "" {
		attempted++
		if _, err := h.email.SendText(ctx, []string{input.RecipientEmail}, h.subject(input), emailBody(input)); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": input.RecipientEmail,
			})
			lastErr, lastChan = err, ChannelEmail
		} else {
			out.Channels = append(out.Channels, ChannelEmail)
		}
	}

	if h.config.SMSEnabled && h.sms != nil && input.RecipientPhone != "" {
		attempted++
		if _, err := h.sms.SendSMS(ctx, input.RecipientPhone, smsText(input)); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": input.RecipientPhone,
			})
			lastErr, lastChan = err, ChannelSMS
		} else {
			out.Channels = append(out.Channels, ChannelSMS)
		}
	}

	switch {
	case attempted == 0:
		h.logger.Warn("no notification channel available", map[string]interface{}{
			"hasEmail": input.RecipientEmail != "",
			"hasPhone": input.RecipientPhone != "",
		})
	case len(out.Channels) == 0:
		return nil, errors.NewNotificationSendFailedError(lastChan, lastErr)
	case len(out.Channels) < attempted:
		out.Status = StatusPartial
	default:
		out.Status = StatusSent
	}
	return out, nil
}

func (h *Handler) subject(input *Input) string {
	if name := strings.TrimSpace(input.CandidateName); name != "" {
		return fmt.Sprintf("%s - %s님", h.config.Subject, name)
	}
	return h.config.Subject
}

func emailBody(input *Input) string {
	if len(input.Messages) == 0 {
		return smsText(input)
	}
	return strings.Join(input.Messages, "\n")
}

// smsText is a one-line summary; the full explanation only goes by email.
func smsText(input *Input) string {
	name := strings.TrimSpace(input.CandidateName)
	if name == "" {
		name = "지원자"
	}
	switch {
	case input.Round == "":
		return fmt.Sprintf("[굿리치] %s님, 희망하신 %s에 맞는 위촉 차수를 찾지 못했습니다. 담당자에게 문의해주세요.", name, input.GPOpenDate)
	case input.IsPossible:
		return fmt.Sprintf("[굿리치] %s님, %s 차수(%s)로 위촉 진행이 가능합니다.", name, input.Round, input.GPOpenDate)
	default:
		return fmt.Sprintf("[굿리치] %s님, %s 차수(%s) 위촉 일정 확인이 필요합니다. 담당자에게 문의해주세요.", name, input.Round, input.GPOpenDate)
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
