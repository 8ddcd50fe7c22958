package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Column positions of the input tab.
const (
	ColDate = iota
	ColCategory
	ColCompany
	ColRound
	ColContent
	ColSecondaryDate
)

// RawRow is one line of the input tab. Date and SecondaryDate keep the cell
// as the source delivered it (string, float64 serial or time.Time).
type RawRow struct {
	Date          interface{}
	Category      string
	Company       string
	Round         string
	Content       string
	SecondaryDate interface{}
}

// RowsFromTable maps a header-less 2-D cell table onto RawRows. Short rows are padded.
func RowsFromTable(table [][]interface{}) []RawRow {
	rows := make([]RawRow, 0, len(table))
	for _, cells := range table {
		rows = append(rows, RawRow{
			Date:          cell(cells, ColDate),
			Category:      CellText(cell(cells, ColCategory)),
			Company:       CellText(cell(cells, ColCompany)),
			Round:         CellText(cell(cells, ColRound)),
			Content:       CellText(cell(cells, ColContent)),
			SecondaryDate: cell(cells, ColSecondaryDate),
		})
	}
	return rows
}

func cell(cells []interface{}, i int) interface{} {
	if i < len(cells) {
		return cells[i]
	}
	return nil
}

// CellText renders any cell value as trimmed text.
func CellText(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return DateOf(c).ISO()
	case Date:
		return c.ISO()
	default:
		return ""
	}
}
