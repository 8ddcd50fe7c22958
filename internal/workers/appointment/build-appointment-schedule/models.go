// internal/workers/appointment/build-appointment-schedule/models.go
package buildschedule

import "appointment-workers/internal/models"

type Input struct {
	FilterDate string `json:"filterDate,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"`
}

type Output struct {
	Schedules  []models.ScheduleView `json:"schedules"`
	RoundCount int                   `json:"roundCount"`
	SnapshotID string                `json:"snapshotId,omitempty"`
}
