package appointment

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"appointment-workers/internal/common/config"
	apperrors "appointment-workers/internal/common/errors"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/common/metrics"
	"appointment-workers/internal/common/observability"
	"appointment-workers/internal/feasibility"
	"appointment-workers/internal/models"
	"appointment-workers/internal/schedule"
	"appointment-workers/internal/sheet"
)

// SnapshotLoader is satisfied by *sheet.Loader.
type SnapshotLoader interface {
	Load(ctx context.Context, force bool) (*sheet.Snapshot, error)
	Invalidate(ctx context.Context) error
}

// Settings configures how rows are interpreted and how feasibility is judged.
type Settings struct {
	Markers        schedule.Markers
	ConflictPolicy schedule.ConflictPolicy
	AttachmentMode schedule.AttachmentMode
	Rules          feasibility.Rules
	Timezone       string
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Markers:        schedule.MarkersFromConfig(cfg.Schedule),
		ConflictPolicy: schedule.ConflictPolicy(cfg.Schedule.ConflictPolicy),
		AttachmentMode: schedule.AttachmentMode(cfg.Schedule.AttachmentMode),
		Rules:          feasibility.RulesFromConfig(cfg.Feasibility),
		Timezone:       cfg.Feasibility.Timezone,
	}
}

func DefaultSettings() Settings {
	return Settings{
		Markers:        schedule.DefaultMarkers(),
		ConflictPolicy: schedule.LastWins,
		AttachmentMode: schedule.AttachByAppointmentMarker,
		Rules:          feasibility.DefaultRules(),
		Timezone:       "Asia/Seoul",
	}
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithObservability(obs *observability.Observability) Option {
	return func(s *Service) { s.obs = obs }
}

func WithTracing(t *observability.Tracing) Option {
	return func(s *Service) { s.tracing = t }
}

// Service runs the sheet pipeline: one snapshot load, then pure computation.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	loader    SnapshotLoader
	settings  Settings
	parser    *schedule.DateParser
	builder   *schedule.Builder
	projector *schedule.Projector
	engine    *feasibility.Engine
	obs       *observability.Observability
	tracing   *observability.Tracing
	now       func() time.Time
	logger    logger.Logger
}

func NewService(loader SnapshotLoader, settings Settings, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		loader:   loader,
		settings: settings,
		now:      time.Now,
		logger:   log,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = schedule.NewDateParser(log,
		schedule.WithClock(s.now),
		schedule.WithRejectHook(func(interface{}) { metrics.DatesRejected.Inc() }),
	)
	s.builder = schedule.NewBuilder(s.parser, settings.Markers, log,
		schedule.WithConflictPolicy(settings.ConflictPolicy),
		schedule.WithAttachmentMode(settings.AttachmentMode),
		schedule.WithBuilderClock(s.now),
	)
	s.projector = schedule.NewProjector(s.parser, settings.Markers, s.now, log)
	s.engine = feasibility.NewEngine(settings.Rules, log,
		feasibility.WithClock(s.now),
		feasibility.WithTimezone(settings.Timezone),
	)
	return s
}

// Parser exposes the date parser so callers decode candidate input the same way rows are read.
func (s *Service) Parser() *schedule.DateParser {
	return s.parser
}

// ParseFilter reads an optional filter date. Blank means no filter; an
// unparseable value is ignored with a warning so all data is returned.
func (s *Service) ParseFilter(raw string) schedule.Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return schedule.Date{}
	}
	d, ok := s.parser.Parse(raw)
	if !ok {
		s.logger.Warn("ignoring filter date", map[string]interface{}{
			"error": apperrors.NewInvalidFilterDateError(raw),
		})
		return schedule.Date{}
	}
	return d
}

func (s *Service) Schedules(ctx context.Context, filter schedule.Date) ([]schedule.RoundRecord, error) {
	out, _, err := s.ScheduleSnapshot(ctx, filter)
	return out, err
}

// ScheduleSnapshot is Schedules plus the id of the snapshot the registry was built from.
func (s *Service) ScheduleSnapshot(ctx context.Context, filter schedule.Date) ([]schedule.RoundRecord, string, error) {
	var (
		out        []schedule.RoundRecord
		snapshotID string
	)
	err := s.run(ctx, "schedules", func(snap *sheet.Snapshot) {
		out = s.buildRegistry(snap, filter)
		snapshotID = snap.ID
	})
	return out, snapshotID, err
}

func (s *Service) CalendarEvents(ctx context.Context, filter schedule.Date) ([]schedule.CalendarEvent, error) {
	var out []schedule.CalendarEvent
	err := s.run(ctx, "calendar-events", func(snap *sheet.Snapshot) {
		out = s.projector.Project(schedule.RowsFromTable(snap.Input), filter)
	})
	return out, err
}

// Evaluate judges the candidate against the unfiltered registry.
func (s *Service) Evaluate(ctx context.Context, c feasibility.Candidate) (feasibility.Result, error) {
	var res feasibility.Result
	err := s.run(ctx, "evaluate", func(snap *sheet.Snapshot) {
		res = s.engine.Evaluate(c, s.buildRegistry(snap, schedule.Date{}))
	})
	if err != nil {
		return feasibility.Result{}, err
	}
	metrics.FeasibilityVerdicts.WithLabelValues(verdict(res)).Inc()
	return res, nil
}

// EvaluateAgainst judges the candidate against a registry the caller already holds.
func (s *Service) EvaluateAgainst(c feasibility.Candidate, registry []schedule.RoundRecord) feasibility.Result {
	res := s.engine.Evaluate(c, registry)
	metrics.FeasibilityVerdicts.WithLabelValues(verdict(res)).Inc()
	return res
}

func (s *Service) Settings(ctx context.Context) (schedule.Settings, error) {
	var out schedule.Settings
	err := s.run(ctx, "settings", func(snap *sheet.Snapshot) {
		out = schedule.ParseSettings(snap.Settings, s.settings.Markers)
	})
	return out, err
}

// Document assembles the published data.json from a single snapshot.
func (s *Service) Document(ctx context.Context, filter schedule.Date) (*models.DataDocument, error) {
	var doc *models.DataDocument
	err := s.run(ctx, "document", func(snap *sheet.Snapshot) {
		settings := schedule.ParseSettings(snap.Settings, s.settings.Markers)
		rows := schedule.RowsFromTable(snap.Input)
		doc = &models.DataDocument{
			RequiredDocuments: settings.Guidance,
			Checklist:         settings.Checklist,
			Recipients:        settings.Recipients,
			Schedules:         models.NewScheduleViews(s.buildRegistry(snap, filter)),
			CalendarEvents:    models.NewCalendarEventViews(s.projector.Project(rows, filter)),
			GeneratedAt:       s.now().UTC().Format(time.RFC3339),
			SnapshotID:        snap.ID,
		}
	})
	return doc, err
}

// Refresh drops the cached snapshot and reloads from the source.
func (s *Service) Refresh(ctx context.Context) (*sheet.Snapshot, error) {
	if err := s.loader.Invalidate(ctx); err != nil {
		s.logger.Warn("snapshot invalidate failed", map[string]interface{}{"error": err})
	}
	ctx, span := s.tracing.StartSpan(ctx, "appointment.refresh")
	start := time.Now()
	snap, err := s.loader.Load(ctx, true)
	s.obs.RecordPipelineRun(ctx, "refresh", status(err), time.Since(start))
	observability.EndSpan(span, err)
	return snap, err
}

func (s *Service) run(ctx context.Context, operation string, fn func(*sheet.Snapshot)) error {
	ctx, span := s.tracing.StartSpan(ctx, "appointment."+operation)
	start := time.Now()
	snap, err := s.loader.Load(ctx, false)
	if err != nil {
		s.obs.RecordPipelineRun(ctx, operation, status(err), time.Since(start))
		observability.EndSpan(span, err)
		return err
	}
	span.SetAttributes(attribute.String("snapshot.id", snap.ID))
	fn(snap)
	s.obs.RecordPipelineRun(ctx, operation, "ok", time.Since(start))
	observability.EndSpan(span, nil)
	return nil
}

func (s *Service) buildRegistry(snap *sheet.Snapshot, filter schedule.Date) []schedule.RoundRecord {
	contacts := schedule.ContactsFromTable(snap.Contacts)
	rounds := s.builder.Build(schedule.RowsFromTable(snap.Input), contacts, filter)
	if filter.IsZero() {
		metrics.RoundsBuilt.Set(float64(len(rounds)))
	}
	return rounds
}

func verdict(res feasibility.Result) string {
	switch {
	case res.SelectedRound == "":
		return "no-round"
	case res.IsPossible:
		return "possible"
	default:
		return "at-risk"
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
