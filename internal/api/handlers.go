package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/validation"
	"appointment-workers/internal/feasibility"
	"appointment-workers/internal/models"
	"appointment-workers/internal/schedule"
	"appointment-workers/internal/sheet"
)

// FeasibilitySchema is the registry activity whose input schema guards POST /api/feasibility.
const FeasibilitySchema = "appointment.feasibility.evaluate"

// Service is satisfied by *appointment.Service.
type Service interface {
	Parser() *schedule.DateParser
	ParseFilter(raw string) schedule.Date
	Schedules(ctx context.Context, filter schedule.Date) ([]schedule.RoundRecord, error)
	CalendarEvents(ctx context.Context, filter schedule.Date) ([]schedule.CalendarEvent, error)
	Evaluate(ctx context.Context, c feasibility.Candidate) (feasibility.Result, error)
	Document(ctx context.Context, filter schedule.Date) (*models.DataDocument, error)
	Refresh(ctx context.Context) (*sheet.Snapshot, error)
}

type AppointmentHandler struct {
	service   Service
	validator *validation.Validator
	logger    logger.Logger
}

func NewAppointmentHandler(service Service, validator *validation.Validator, log logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service:   service,
		validator: validator,
		logger:    log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// GET /api/schedules?date=
func (h *AppointmentHandler) ListSchedules(c *gin.Context) {
	rounds, err := h.service.Schedules(c.Request.Context(), h.service.ParseFilter(c.Query("date")))
	if err != nil {
		RespondStandardError(c, err)
		return
	}
	RespondOK(c, models.NewScheduleViews(rounds))
}

// GET /api/calendar-events?date=
func (h *AppointmentHandler) ListCalendarEvents(c *gin.Context) {
	events, err := h.service.CalendarEvents(c.Request.Context(), h.service.ParseFilter(c.Query("date")))
	if err != nil {
		RespondStandardError(c, err)
		return
	}
	RespondOK(c, models.NewCalendarEventViews(events))
}

// GET /api/data?date=
func (h *AppointmentHandler) GetDocument(c *gin.Context) {
	doc, err := h.service.Document(c.Request.Context(), h.service.ParseFilter(c.Query("date")))
	if err != nil {
		RespondStandardError(c, err)
		return
	}
	RespondOK(c, doc)
}

// POST /api/feasibility
func (h *AppointmentHandler) EvaluateFeasibility(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, string(apperrors.ErrCodeInvalidCandidateInput), err)
		return
	}

	if h.validator != nil {
		res, err := h.validator.ValidateJSON(FeasibilitySchema, string(body))
		if err != nil {
			RespondError(c, http.StatusBadRequest, string(apperrors.ErrCodeInvalidCandidateInput), err)
			return
		}
		if !res.Valid {
			RespondStandardError(c, apperrors.NewInvalidCandidateInputError(strings.Join(res.GetErrorMessages(), "; ")))
			return
		}
	}

	var input models.CandidateInput
	if err := json.Unmarshal(body, &input); err != nil {
		RespondError(c, http.StatusBadRequest, string(apperrors.ErrCodeInvalidCandidateInput), err)
		return
	}

	candidate, err := input.ToCandidate(h.service.Parser())
	if err != nil {
		RespondStandardError(c, err)
		return
	}

	res, err := h.service.Evaluate(c.Request.Context(), candidate)
	if err != nil {
		RespondStandardError(c, err)
		return
	}
	RespondOK(c, models.NewFeasibilityView(res))
}

type RefreshResponse struct {
	SnapshotID string `json:"snapshotId"`
	FetchedAt  string `json:"fetchedAt"`
}

// POST /api/snapshot/refresh
func (h *AppointmentHandler) RefreshSnapshot(c *gin.Context) {
	snap, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		RespondStandardError(c, err)
		return
	}
	h.logger.Info("snapshot refreshed", map[string]interface{}{"snapshotId": snap.ID})
	RespondOK(c, RefreshResponse{SnapshotID: snap.ID, FetchedAt: snap.FetchedAt.UTC().Format(time.RFC3339)})
}
