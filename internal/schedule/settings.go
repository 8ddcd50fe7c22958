package schedule

import (
	"strconv"
	"strings"
)

const (
	DefaultGuidance       = "환영합니다! 굿리치 전문가로의 첫 걸음을 응원합니다."
	MissingAddressMessage = "주소 미입력"
)

type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Recipient struct {
	Company        string `json:"company"`
	Address        string `json:"address"`
	AddressMissing bool   `json:"addressMissing"`
}

// Settings is the operator-maintained settings tab.
type Settings struct {
	Guidance   string
	Checklist  []ChecklistItem
	Recipients []Recipient
}

func DefaultChecklist() []ChecklistItem {
	return []ChecklistItem{
		{ID: "1", Text: "위촉서류 제출"},
		{ID: "2", Text: "굿리치 앱 설치 및 프로필 설정"},
	}
}

// ParseSettings reads key/value rows. The recipients key opens a section of
// (organization, address) pairs that runs until the guidance or checklist key.
func ParseSettings(table [][]interface{}, m Markers) Settings {
	s := Settings{Recipients: []Recipient{}}
	inRecipients := false

	for _, cells := range table {
		key := strings.TrimSpace(strings.ReplaceAll(CellText(cell(cells, 0)), "`", ""))
		value := CellText(cell(cells, 1))
		if key == "" {
			continue
		}

		if key == m.SettingsRecipients {
			inRecipients = true
			continue
		}
		if inRecipients {
			if key != m.SettingsGuide && key != m.SettingsCheck {
				s.Recipients = append(s.Recipients, recipient(key, value))
				continue
			}
			inRecipients = false
		}

		if value == "" {
			continue
		}
		switch key {
		case m.SettingsGuide:
			s.Guidance = value
		case m.SettingsCheck:
			s.Checklist = append(s.Checklist, ChecklistItem{
				ID:   strconv.Itoa(len(s.Checklist) + 1),
				Text: value,
			})
		}
	}

	if len(s.Checklist) == 0 {
		s.Checklist = DefaultChecklist()
	}
	if s.Guidance == "" {
		s.Guidance = DefaultGuidance
	}
	return s
}

func recipient(company, address string) Recipient {
	if address == "" {
		return Recipient{Company: company, Address: MissingAddressMessage, AddressMissing: true}
	}
	return Recipient{Company: company, Address: address}
}
