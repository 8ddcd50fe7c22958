package feasibility

import "appointment-workers/internal/schedule"

type TrainingStatus string

const (
	TrainingNone        TrainingStatus = "none"
	TrainingNew         TrainingStatus = "new"
	TrainingExperienced TrainingStatus = "experienced"
)

// Completed treats an unset status like "none".
func (s TrainingStatus) Completed() bool {
	return s == TrainingNew || s == TrainingExperienced
}

func (s TrainingStatus) Label() string {
	if s == TrainingNew {
		return "신규등록교육"
	}
	return "경력등록교육"
}

type Certification string

const (
	CertLife     Certification = "생명보험"
	CertNonLife  Certification = "손해보험"
	CertThird    Certification = "제3보험"
	CertVariable Certification = "변액보험"
)

// CanonicalCertifications is the full set a new agent is expected to hold, in display order.
var CanonicalCertifications = []Certification{CertLife, CertNonLife, CertThird, CertVariable}

type Certifications struct {
	Life     bool
	NonLife  bool
	Third    bool
	Variable bool
}

func (c Certifications) has(cert Certification) bool {
	switch cert {
	case CertLife:
		return c.Life
	case CertNonLife:
		return c.NonLife
	case CertThird:
		return c.Third
	case CertVariable:
		return c.Variable
	}
	return false
}

// Split returns held and missing certifications in canonical order.
func (c Certifications) Split() (held, missing []Certification) {
	for _, cert := range CanonicalCertifications {
		if c.has(cert) {
			held = append(held, cert)
		} else {
			missing = append(missing, cert)
		}
	}
	return held, missing
}

// Candidate is the self-reported state of someone asking for an appointment date.
type Candidate struct {
	Name               string
	Department         string
	DesiredDate        schedule.Date
	ClearanceCompleted bool
	NoticeSentDate     schedule.Date
	Certifications     Certifications
	Training           TrainingStatus
	InsuranceChecked   bool
}
