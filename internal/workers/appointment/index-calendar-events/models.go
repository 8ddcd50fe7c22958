// internal/workers/appointment/index-calendar-events/models.go
package indexevents

import "appointment-workers/internal/models"

type Input struct {
	FilterDate string `json:"filterDate,omitempty"`
	Index      string `json:"index,omitempty"`
}

type Output struct {
	Index     string   `json:"index"`
	Indexed   int      `json:"indexed"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failedIds,omitempty"`
}

// EventDocument is what gets stored per calendar event.
type EventDocument struct {
	models.CalendarEventView
	IndexedAt string `json:"indexedAt"`
}
