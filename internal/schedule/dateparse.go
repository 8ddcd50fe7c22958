package schedule

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"appointment-workers/internal/common/logger"
)

var (
	dottedDatePattern = regexp.MustCompile(`^(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})\.?$`)
	monthDayPattern   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	datePartSplitter  = regexp.MustCompile(`[.\-/]`)

	// Spreadsheet serial day zero. Serial 1 is 1899-12-31.
	serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

	fallbackLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006년 1월 2일",
		"2006년 01월 02일",
		"January 2, 2006",
		"Jan 2, 2006",
		"2 January 2006",
		"2 Jan 2006",
		"Mon Jan 2 2006",
		"Mon, 02 Jan 2006 15:04:05 MST",
		time.UnixDate,
	}
)

// maxSerial is the serial of 9999-12-31.
const maxSerial = 2958465

type ParserOption func(*DateParser)

// WithClock supplies "now" for patterns that omit the year.
func WithClock(now func() time.Time) ParserOption {
	return func(p *DateParser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRejectHook is called once for every non-blank value that fails to parse.
func WithRejectHook(fn func(raw interface{})) ParserOption {
	return func(p *DateParser) {
		p.onReject = fn
	}
}

// DateParser turns spreadsheet cells into calendar days.
type DateParser struct {
	now      func() time.Time
	logger   logger.Logger
	onReject func(raw interface{})
}

func NewDateParser(log logger.Logger, opts ...ParserOption) *DateParser {
	p := &DateParser{now: time.Now, logger: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the calendar day encoded by value. Unparseable input yields
// (Date{}, false) and a warning; it never panics.
func (p *DateParser) Parse(value interface{}) (Date, bool) {
	if isBlank(value) {
		return Date{}, false
	}
	if d, ok := p.parse(value); ok {
		return d, true
	}
	if p.logger != nil {
		p.logger.Warn("unparseable date", map[string]interface{}{"raw": value})
	}
	if p.onReject != nil {
		p.onReject(value)
	}
	return Date{}, false
}

func (p *DateParser) parse(value interface{}) (Date, bool) {
	switch v := value.(type) {
	case time.Time:
		return DateOf(v), !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return Date{}, false
		}
		return DateOf(*v), true
	case Date:
		return v, !v.IsZero()
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return p.parseText(v.String())
		}
		return fromSerial(f)
	case string:
		return p.parseText(v)
	default:
		return Date{}, false
	}
}

func fromSerial(serial float64) (Date, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < -maxSerial || serial > maxSerial {
		return Date{}, false
	}
	ms := int64(math.Round(serial * 86400000))
	return DateOf(serialEpoch.Add(time.Duration(ms) * time.Millisecond)), true
}

func (p *DateParser) parseText(raw string) (Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, false
	}

	if m := dottedDatePattern.FindStringSubmatch(s); m != nil {
		if d, ok := build(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return d, true
		}
	}

	if m := monthDayPattern.FindStringSubmatch(s); m != nil {
		if d, ok := build(p.now().Year(), atoi(m[1]), atoi(m[2])); ok {
			return d, true
		}
	}

	if d, ok := parseThreePart(s); ok {
		return d, true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

func parseThreePart(s string) (Date, bool) {
	parts := datePartSplitter.Split(s, -1)
	if len(parts) != 3 {
		return Date{}, false
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}
	year, month, day := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	if year <= 1900 || month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	return build(year, month, day)
}

// build constructs the date and rejects anything time.Date had to normalize,
// such as April 31 rolling into May 1.
func build(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 || day < 1 {
		return Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	y, m, d := t.Date()
	if y != year || int(m) != month || d != day {
		return Date{}, false
	}
	return Date{Year: y, Month: m, Day: d}, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func isBlank(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
