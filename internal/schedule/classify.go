package schedule

import "strings"

type SourceType string

const (
	SourceInternal        SourceType = "internal"
	SourceOrganization    SourceType = "organization"
	SourceExternalSession SourceType = "external-session"
)

// DisplayType is the calendar label for the source.
func (s SourceType) DisplayType() string {
	switch s {
	case SourceInternal:
		return "goodrich"
	case SourceExternalSession:
		return "session"
	default:
		return "company"
	}
}

type MilestoneKind string

const (
	MilestoneOpen                   MilestoneKind = "open-announcement"
	MilestoneSubmissionDeadline     MilestoneKind = "submission-deadline"
	MilestoneOrganizationSubmission MilestoneKind = "organization-submission"
	MilestoneOther                  MilestoneKind = "other"
)

// Classification is derived from a row's text on every read and never stored.
type Classification struct {
	Source    SourceType
	Milestone MilestoneKind
	// Appointment is set when the category carries the appointment marker.
	Appointment bool
}

type Classifier struct {
	markers Markers
}

func NewClassifier(m Markers) *Classifier {
	return &Classifier{markers: m}
}

func (c *Classifier) Classify(row RawRow) Classification {
	category := strings.TrimSpace(row.Category)
	content := strings.TrimSpace(row.Content)

	cl := Classification{
		Source:      c.sourceOf(category),
		Milestone:   MilestoneOther,
		Appointment: c.markers.Appointment != "" && strings.Contains(category, c.markers.Appointment),
	}

	switch {
	case c.markers.HasOpen(content):
		cl.Milestone = MilestoneOpen
	case c.markers.HasDeadline(content):
		cl.Milestone = MilestoneSubmissionDeadline
	case cl.Source == SourceOrganization && cl.Appointment && strings.TrimSpace(row.Company) != "":
		cl.Milestone = MilestoneOrganizationSubmission
	}
	return cl
}

func (c *Classifier) sourceOf(category string) SourceType {
	if c.markers.Internal != "" && strings.Contains(category, c.markers.Internal) {
		return SourceInternal
	}
	for _, marker := range c.markers.Sessions {
		if marker != "" && strings.Contains(category, marker) {
			return SourceExternalSession
		}
	}
	return SourceOrganization
}
