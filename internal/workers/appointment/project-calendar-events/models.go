// internal/workers/appointment/project-calendar-events/models.go
package projectevents

import "appointment-workers/internal/models"

type Input struct {
	FilterDate string `json:"filterDate,omitempty"`
}

type Output struct {
	CalendarEvents []models.CalendarEventView `json:"calendarEvents"`
	EventCount     int                        `json:"eventCount"`
	CountsByType   map[string]int             `json:"countsByType"`
}
