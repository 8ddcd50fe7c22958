package schedule

import "strings"

// RegistrationDate extracts the association registration day ("... 등록일 M/D")
// from free-text content. The year is supplied by the caller.
func (m Markers) RegistrationDate(content string, year int) (Date, bool) {
	if m.RegistrationPattern == nil {
		return Date{}, false
	}
	match := m.RegistrationPattern.FindStringSubmatch(content)
	if len(match) < 3 {
		return Date{}, false
	}
	return build(year, atoi(match[1]), atoi(match[2]))
}

// OpenTime returns the time text in "GP 오픈 예정 (<time>)", if any.
func (m Markers) OpenTime(content string) string {
	if m.OpenTimePattern == nil {
		return ""
	}
	match := m.OpenTimePattern.FindStringSubmatch(content)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}
