// internal/models/schedule.go
package models

import "appointment-workers/internal/schedule"

// ScheduleView is one round as the schedule table renders it. Dates are
// display strings such as "5/7(수)"; absent dates are "".
type ScheduleView struct {
	Round      string        `json:"round"`
	Deadline   string        `json:"deadline"`
	GPOpenDate string        `json:"gpOpenDate"`
	GPOpenTime string        `json:"gpOpenTime"`
	Companies  []CompanyView `json:"companies"`
}

type CompanyView struct {
	Company            string `json:"company"`
	Round              string `json:"round"`
	AcceptanceDeadline string `json:"acceptanceDeadline"`
	GPUploadDate       string `json:"gpUploadDate"`
	RecruitmentMethod  string `json:"recruitmentMethod"`
	Manager            string `json:"manager"`
}

func NewScheduleViews(records []schedule.RoundRecord) []ScheduleView {
	views := make([]ScheduleView, 0, len(records))
	for _, r := range records {
		views = append(views, NewScheduleView(r))
	}
	return views
}

func NewScheduleView(r schedule.RoundRecord) ScheduleView {
	companies := make([]CompanyView, 0, len(r.Organizations))
	for _, org := range r.Organizations {
		companies = append(companies, CompanyView{
			Company:            org.Name,
			Round:              org.RoundKey,
			AcceptanceDeadline: org.SubmissionDeadline.ShortLabel(),
			GPUploadDate:       org.UploadDate.ShortLabel(),
			RecruitmentMethod:  org.ContactMemo,
			Manager:            org.ContactPerson,
		})
	}
	return ScheduleView{
		Round:      r.RoundKey,
		Deadline:   r.SubmissionDeadline.ShortLabel(),
		GPOpenDate: r.OpenDate.ShortLabel(),
		GPOpenTime: r.OpenTime,
		Companies:  companies,
	}
}
