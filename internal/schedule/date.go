package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

var koreanWeekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// Date is a calendar day with no time-of-day or zone. The zero value means absent.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// DateIn truncates t to its calendar day in loc.
func DateIn(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d == o }

// ISO formats as yyyy-mm-dd; absent dates format as "".
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ShortLabel formats as M/D(요일), the schedule table display form.
func (d Date) ShortLabel() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d(%s)", int(d.Month), d.Day, koreanWeekdays[d.Weekday()])
}

// LongLabel formats as "yyyy년 MM월 dd일 (요일)".
func (d Date) LongLabel() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s (%s)", d.KoreanDate(), koreanWeekdays[d.Weekday()])
}

// KoreanDate formats as "yyyy년 MM월 dd일".
func (d Date) KoreanDate() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d년 %02d월 %02d일", d.Year, int(d.Month), d.Day)
}

// MonthDay formats as "MM월 dd일".
func (d Date) MonthDay() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d월 %02d일", int(d.Month), d.Day)
}

func (d Date) String() string {
	return d.ISO()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.ISO())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}

// MinDate returns the earlier of two dates, ignoring absent ones.
func MinDate(a, b Date) Date {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case b.Before(a):
		return b
	default:
		return a
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
