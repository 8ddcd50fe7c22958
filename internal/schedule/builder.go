package schedule

import (
	"sort"
	"strings"
	"time"

	"appointment-workers/internal/common/logger"
)

// ConflictPolicy decides which row wins when several supply the same milestone for a round.
type ConflictPolicy string

const (
	LastWins  ConflictPolicy = "last-wins"
	FirstWins ConflictPolicy = "first-wins"
)

// AttachmentMode decides which rows contribute organization entries.
type AttachmentMode string

const (
	// AttachByAppointmentMarker attaches any row whose category carries the appointment marker.
	AttachByAppointmentMarker AttachmentMode = "appointment-marker"
	// AttachByOrganization attaches rows classified as organization source.
	AttachByOrganization AttachmentMode = "organization"
)

// OrganizationEntry is one organization's submission window inside a round.
type OrganizationEntry struct {
	Name               string `json:"organizationName"`
	RoundKey           string `json:"roundKey"`
	SubmissionDeadline Date   `json:"submissionDeadline"`
	UploadDate         Date   `json:"uploadDate"`
	RegistrationDate   Date   `json:"registrationDate"`
	ContactMemo        string `json:"contactMemo"`
	ContactPerson      string `json:"contactPerson"`
}

// RoundRecord is one appointment round with its milestones. Records are
// rebuilt on every load and never modified after Build returns.
type RoundRecord struct {
	RoundKey           string              `json:"roundKey"`
	OpenDate           Date                `json:"openDate"`
	OpenTime           string              `json:"openTime,omitempty"`
	SubmissionDeadline Date                `json:"submissionDeadline"`
	Organizations      []OrganizationEntry `json:"organizations"`
}

// RegistrationAnchor is the earliest association registration date among the
// round's organizations.
func (r RoundRecord) RegistrationAnchor() Date {
	var anchor Date
	for _, org := range r.Organizations {
		anchor = MinDate(anchor, org.RegistrationDate)
	}
	return anchor
}

// sortDate is the open date, else the deadline.
func (r RoundRecord) sortDate() Date {
	if !r.OpenDate.IsZero() {
		return r.OpenDate
	}
	return r.SubmissionDeadline
}

type BuilderOption func(*Builder)

func WithConflictPolicy(p ConflictPolicy) BuilderOption {
	return func(b *Builder) {
		if p != "" {
			b.policy = p
		}
	}
}

func WithAttachmentMode(m AttachmentMode) BuilderOption {
	return func(b *Builder) {
		if m != "" {
			b.mode = m
		}
	}
}

func WithBuilderClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// Builder folds input rows into the round registry.
type Builder struct {
	parser     *DateParser
	classifier *Classifier
	markers    Markers
	policy     ConflictPolicy
	mode       AttachmentMode
	now        func() time.Time
	logger     logger.Logger
}

func NewBuilder(parser *DateParser, markers Markers, log logger.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		parser:     parser,
		classifier: NewClassifier(markers),
		markers:    markers,
		policy:     LastWins,
		mode:       AttachByAppointmentMarker,
		now:        time.Now,
		logger:     log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type parsedRow struct {
	RawRow
	class   Classification
	date    Date
	hasDate bool
}

// Build runs discovery over internal rows, then attaches organizations to every
// round their round field names. A non-zero filter keeps only rounds opening or
// closing on that day; if none do the result is empty.
func (b *Builder) Build(rows []RawRow, contacts ContactMap, filter Date) []RoundRecord {
	parsed := b.parseRows(rows)

	records, order := b.discover(parsed)

	keys := order
	if !filter.IsZero() {
		keys = keys[:0:0]
		for _, key := range order {
			rec := records[key]
			if rec.OpenDate.Equal(filter) || rec.SubmissionDeadline.Equal(filter) {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			if b.logger != nil {
				b.logger.Info("no rounds on filter date", map[string]interface{}{"filterDate": filter.ISO()})
			}
			return []RoundRecord{}
		}
	}

	b.attach(parsed, records, keys, contacts)

	out := make([]RoundRecord, 0, len(keys))
	for _, key := range keys {
		rec := *records[key]
		if rec.Organizations == nil {
			rec.Organizations = []OrganizationEntry{}
		}
		out = append(out, rec)
	}
	sortRounds(out)

	if b.logger != nil {
		b.logger.Debug("round registry built", map[string]interface{}{
			"rows":   len(rows),
			"rounds": len(out),
		})
	}
	return out
}

func (b *Builder) parseRows(rows []RawRow) []parsedRow {
	parsed := make([]parsedRow, len(rows))
	for i, row := range rows {
		d, ok := b.parser.Parse(row.Date)
		parsed[i] = parsedRow{
			RawRow:  row,
			class:   b.classifier.Classify(row),
			date:    d,
			hasDate: ok,
		}
	}
	return parsed
}

func (b *Builder) discover(rows []parsedRow) (map[string]*RoundRecord, []string) {
	records := make(map[string]*RoundRecord)
	var order []string

	for _, row := range rows {
		if row.class.Source != SourceInternal || !row.hasDate {
			continue
		}
		key := PrimaryRoundKey(row.Round)
		if key == "" {
			continue
		}
		rec, ok := records[key]
		if !ok {
			rec = &RoundRecord{RoundKey: key}
			records[key] = rec
			order = append(order, key)
		}

		// A row may carry both markers and then sets both milestones.
		content := strings.TrimSpace(row.Content)
		if b.markers.HasOpen(content) && (b.policy != FirstWins || rec.OpenDate.IsZero()) {
			rec.OpenDate = row.date
			rec.OpenTime = b.markers.OpenTime(content)
		}
		if b.markers.HasDeadline(content) && (b.policy != FirstWins || rec.SubmissionDeadline.IsZero()) {
			rec.SubmissionDeadline = row.date
		}
	}
	return records, order
}

func (b *Builder) attach(rows []parsedRow, records map[string]*RoundRecord, keys []string, contacts ContactMap) {
	year := b.now().Year()
	for _, row := range rows {
		if !b.attachable(row) {
			continue
		}

		var matched []string
		for _, key := range keys {
			if MatchesRound(key, row.Round) {
				matched = append(matched, key)
			}
		}
		if len(matched) == 0 {
			continue
		}

		upload, _ := b.parser.Parse(row.SecondaryDate)
		registration, _ := b.markers.RegistrationDate(row.Content, year)
		contact := contacts.Lookup(row.Company)

		for _, key := range matched {
			records[key].Organizations = append(records[key].Organizations, OrganizationEntry{
				Name:               row.Company,
				RoundKey:           key,
				SubmissionDeadline: row.date,
				UploadDate:         upload,
				RegistrationDate:   registration,
				ContactMemo:        contact.Memo,
				ContactPerson:      contact.Manager,
			})
		}
	}
}

func (b *Builder) attachable(row parsedRow) bool {
	if row.Company == "" {
		return false
	}
	if b.mode == AttachByOrganization {
		return row.class.Source == SourceOrganization
	}
	return row.class.Appointment
}

// sortRounds orders by open date (else deadline); undated rounds go last and
// ties keep discovery order.
func sortRounds(rounds []RoundRecord) {
	sort.SliceStable(rounds, func(i, j int) bool {
		a, b := rounds[i].sortDate(), rounds[j].sortDate()
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})
}
