// internal/models/document.go
package models

import "appointment-workers/internal/schedule"

// DataDocument is the published data.json consumed by the onboarding UI.
type DataDocument struct {
	RequiredDocuments string                   `json:"requiredDocuments"`
	Checklist         []schedule.ChecklistItem `json:"checklist"`
	Recipients        []schedule.Recipient     `json:"recipients"`
	Schedules         []ScheduleView           `json:"schedules"`
	CalendarEvents    []CalendarEventView      `json:"calendarEvents"`
	GeneratedAt       string                   `json:"generatedAt,omitempty"`
	SnapshotID        string                   `json:"snapshotId,omitempty"`
}
