package schedule

import (
	"fmt"
	"strings"
)

// Contact is the per-organization recruiting memo and manager line.
type Contact struct {
	Memo    string
	Manager string
}

// ContactMap is keyed by lowercased, trimmed organization name.
type ContactMap map[string]Contact

// ContactsFromTable reads the contacts tab: company, memo, name, phone.
func ContactsFromTable(table [][]interface{}) ContactMap {
	contacts := make(ContactMap, len(table))
	for _, cells := range table {
		company := contactKey(CellText(cell(cells, 0)))
		if company == "" {
			continue
		}
		name := CellText(cell(cells, 2))
		phone := CellText(cell(cells, 3))
		contacts[company] = Contact{
			Memo:    CellText(cell(cells, 1)),
			Manager: managerLine(name, phone),
		}
	}
	return contacts
}

// Lookup never fails; unknown organizations get an empty Contact.
func (m ContactMap) Lookup(company string) Contact {
	if m == nil {
		return Contact{}
	}
	return m[contactKey(company)]
}

func contactKey(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}

func managerLine(name, phone string) string {
	switch {
	case name != "" && phone != "":
		return fmt.Sprintf("%s (%s)", name, phone)
	default:
		return name
	}
}
