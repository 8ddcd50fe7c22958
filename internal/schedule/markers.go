package schedule

import (
	"regexp"
	"strings"

	"appointment-workers/internal/common/config"
)

// Markers is the vocabulary the sheet maintainers use to tag rows.
type Markers struct {
	Internal            string
	Sessions            []string
	Appointment         string
	Open                string
	Deadline            string
	OpenTimePattern     *regexp.Regexp
	RegistrationPattern *regexp.Regexp
	SettingsGuide       string
	SettingsCheck       string
	SettingsRecipients  string
}

func DefaultMarkers() Markers {
	return Markers{
		Internal:            "굿리치",
		Sessions:            []string{"세종", "협회"},
		Appointment:         "위촉",
		Open:                "GP 오픈 예정",
		Deadline:            "자격추가/전산승인마감",
		OpenTimePattern:     regexp.MustCompile(`GP\s*오픈\s*예정\s*\(([^)]+)\)`),
		RegistrationPattern: regexp.MustCompile(`생명보험협회\s*등록일\s*(\d{1,2})/(\d{1,2})`),
		SettingsGuide:       "위촉필요서류",
		SettingsCheck:       "체크리스트",
		SettingsRecipients:  "수신",
	}
}

func (m Markers) HasOpen(content string) bool {
	return m.Open != "" && strings.Contains(content, m.Open)
}

func (m Markers) HasDeadline(content string) bool {
	return m.Deadline != "" && strings.Contains(content, m.Deadline)
}

// MarkersFromConfig overlays configured vocabulary on the defaults.
func MarkersFromConfig(cfg config.ScheduleConfig) Markers {
	m := DefaultMarkers()
	if cfg.InternalMarker != "" {
		m.Internal = cfg.InternalMarker
	}
	if len(cfg.SessionMarkers) > 0 {
		m.Sessions = cfg.SessionMarkers
	}
	if cfg.AppointmentMarker != "" {
		m.Appointment = cfg.AppointmentMarker
	}
	if cfg.OpenMarker != "" {
		m.Open = cfg.OpenMarker
	}
	if cfg.DeadlineMarker != "" {
		m.Deadline = cfg.DeadlineMarker
	}
	if cfg.RegistrationPattern != "" {
		if re, err := regexp.Compile(cfg.RegistrationPattern); err == nil {
			m.RegistrationPattern = re
		}
	}
	if cfg.SettingsGuidanceKey != "" {
		m.SettingsGuide = cfg.SettingsGuidanceKey
	}
	if cfg.SettingsChecklistKey != "" {
		m.SettingsCheck = cfg.SettingsChecklistKey
	}
	if cfg.SettingsRecipientsKey != "" {
		m.SettingsRecipients = cfg.SettingsRecipientsKey
	}
	return m
}
