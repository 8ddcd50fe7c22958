// internal/models/feasibility.go
package models

import (
	"fmt"
	"strings"

	apperrors "appointment-workers/internal/common/errors"
	"appointment-workers/internal/feasibility"
	"appointment-workers/internal/schedule"
)

// CandidateInput is the onboarding form as submitted by the UI or a process
// variable payload. Dates accept any format the sheet date parser accepts.
type CandidateInput struct {
	Name                   string              `json:"name"`
	Department             string              `json:"department"`
	DesiredDate            string              `json:"desiredDate"`
	IsAssociationCancelled *bool               `json:"isAssociationCancelled"`
	CertProofSentDate      string              `json:"certProofSentDate,omitempty"`
	Certifications         CertificationsInput `json:"certifications"`
	EducationStatus        *string             `json:"educationStatus"`
	InsuranceChecked       *bool               `json:"insuranceChecked"`
}

type CertificationsInput struct {
	Life     bool `json:"life"`
	Damage   bool `json:"damage"`
	Third    bool `json:"third"`
	Variable bool `json:"variable"`
}

// ToCandidate converts the form into engine input. A date that is present but
// unparseable is rejected; an absent desired date is left zero.
func (in CandidateInput) ToCandidate(parser *schedule.DateParser) (feasibility.Candidate, error) {
	c := feasibility.Candidate{
		Name:               strings.TrimSpace(in.Name),
		Department:         strings.TrimSpace(in.Department),
		ClearanceCompleted: in.IsAssociationCancelled != nil && *in.IsAssociationCancelled,
		InsuranceChecked:   in.InsuranceChecked != nil && *in.InsuranceChecked,
		Certifications: feasibility.Certifications{
			Life:     in.Certifications.Life,
			NonLife:  in.Certifications.Damage,
			Third:    in.Certifications.Third,
			Variable: in.Certifications.Variable,
		},
	}

	if in.EducationStatus != nil {
		switch status := feasibility.TrainingStatus(*in.EducationStatus); status {
		case feasibility.TrainingNone, feasibility.TrainingNew, feasibility.TrainingExperienced:
			c.Training = status
		case "":
		default:
			return feasibility.Candidate{}, apperrors.NewInvalidCandidateInputError(
				fmt.Sprintf("educationStatus must be none, new or experienced, got %q", *in.EducationStatus))
		}
	}

	var err error
	if c.DesiredDate, err = parseOptionalDate(parser, "desiredDate", in.DesiredDate); err != nil {
		return feasibility.Candidate{}, err
	}
	if c.NoticeSentDate, err = parseOptionalDate(parser, "certProofSentDate", in.CertProofSentDate); err != nil {
		return feasibility.Candidate{}, err
	}
	return c, nil
}

func parseOptionalDate(parser *schedule.DateParser, field, raw string) (schedule.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return schedule.Date{}, nil
	}
	d, ok := parser.Parse(raw)
	if !ok {
		return schedule.Date{}, apperrors.NewInvalidCandidateInputError(fmt.Sprintf("%s: unparseable date %q", field, raw))
	}
	return d, nil
}

// FeasibilityView is the result card. gpOpenDate is a long display label and
// falls back to the desired date when no round was selected; the deadline
// fields are yyyy-mm-dd or "".
type FeasibilityView struct {
	Round               string   `json:"round"`
	GPOpenDate          string   `json:"gpOpenDate"`
	DeadlineDate        string   `json:"deadlineDate"`
	AssociationDeadline string   `json:"associationDeadline"`
	EducationDeadline   string   `json:"educationDeadline"`
	NoticeMailDeadline  string   `json:"noticeMailDeadline,omitempty"`
	IsPossible          bool     `json:"isPossible"`
	Messages            []string `json:"messages"`
}

func NewFeasibilityView(res feasibility.Result) FeasibilityView {
	open := res.OpenDate
	if res.SelectedRound == "" {
		open = res.DesiredDate
	}
	messages := res.Messages
	if messages == nil {
		messages = []string{}
	}
	return FeasibilityView{
		Round:               res.SelectedRound,
		GPOpenDate:          open.LongLabel(),
		DeadlineDate:        res.SubmissionDeadline.ISO(),
		AssociationDeadline: res.ClearanceDeadline.ISO(),
		EducationDeadline:   res.TrainingDeadline.ISO(),
		NoticeMailDeadline:  res.NoticeMailDeadline.ISO(),
		IsPossible:          res.IsPossible,
		Messages:            messages,
	}
}
