package schedule

import (
	"strconv"
	"strings"
	"time"

	"appointment-workers/internal/common/logger"
)

// CalendarEvent is one dated row with content, independent of the round registry.
type CalendarEvent struct {
	ID                          string
	Date                        Date
	Title                       string
	Type                        string
	Source                      SourceType
	Category                    string
	Company                     string
	Round                       string
	Content                     string
	AssociationRegistrationDate Date
}

type Projector struct {
	parser     *DateParser
	classifier *Classifier
	markers    Markers
	now        func() time.Time
	logger     logger.Logger
}

func NewProjector(parser *DateParser, markers Markers, now func() time.Time, log logger.Logger) *Projector {
	if now == nil {
		now = time.Now
	}
	return &Projector{
		parser:     parser,
		classifier: NewClassifier(markers),
		markers:    markers,
		now:        now,
		logger:     log,
	}
}

// Project emits one event per row with a parseable date and non-empty content,
// numbered from 1 in row order. A non-zero filter keeps same-day events only.
func (p *Projector) Project(rows []RawRow, filter Date) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(rows))
	year := p.now().Year()
	next := 1

	for _, row := range rows {
		date, ok := p.parser.Parse(row.Date)
		if !ok {
			continue
		}
		if !filter.IsZero() && !date.Equal(filter) {
			continue
		}
		content := strings.TrimSpace(row.Content)
		if content == "" {
			continue
		}

		category := strings.TrimSpace(row.Category)
		company := strings.TrimSpace(row.Company)
		class := p.classifier.Classify(row)
		registration, _ := p.markers.RegistrationDate(content, year)

		events = append(events, CalendarEvent{
			ID:                          strconv.Itoa(next),
			Date:                        date,
			Title:                       EventTitle(category, company, content),
			Type:                        class.Source.DisplayType(),
			Source:                      class.Source,
			Category:                    category,
			Company:                     company,
			Round:                       strings.TrimSpace(row.Round),
			Content:                     content,
			AssociationRegistrationDate: registration,
		})
		next++
	}

	if p.logger != nil {
		p.logger.Debug("calendar projected", map[string]interface{}{"rows": len(rows), "events": len(events)})
	}
	return events
}

// EventTitle joins "category company" and content with " - ", skipping empty parts.
func EventTitle(category, company, content string) string {
	prefix := joinNonEmpty(" ", category, company)
	return joinNonEmpty(" - ", prefix, content)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}
