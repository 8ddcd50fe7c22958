// internal/models/calendar.go
package models

import "appointment-workers/internal/schedule"

type CalendarEventView struct {
	ID                          string  `json:"id"`
	Date                        string  `json:"date"` // yyyy-mm-dd
	Title                       string  `json:"title"`
	Type                        string  `json:"type"` // goodrich | company | session
	Category                    string  `json:"category"`
	Company                     string  `json:"company"`
	Round                       string  `json:"round"`
	Content                     string  `json:"content"`
	AssociationRegistrationDate *string `json:"associationRegistrationDate"`
}

func NewCalendarEventViews(events []schedule.CalendarEvent) []CalendarEventView {
	views := make([]CalendarEventView, 0, len(events))
	for _, e := range events {
		views = append(views, NewCalendarEventView(e))
	}
	return views
}

func NewCalendarEventView(e schedule.CalendarEvent) CalendarEventView {
	v := CalendarEventView{
		ID:       e.ID,
		Date:     e.Date.ISO(),
		Title:    e.Title,
		Type:     e.Type,
		Category: e.Category,
		Company:  e.Company,
		Round:    e.Round,
		Content:  e.Content,
	}
	if !e.AssociationRegistrationDate.IsZero() {
		iso := e.AssociationRegistrationDate.ISO()
		v.AssociationRegistrationDate = &iso
	}
	return v
}
