package feasibility

import (
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"appointment-workers/internal/common/config"
	"appointment-workers/internal/common/logger"
	"appointment-workers/internal/schedule"
)

// Rules are the day offsets used to work backwards from a round's milestones.
type Rules struct {
	ClearanceLeadDays      int
	TrainingLeadDays       int
	SubmissionFallbackDays int
	NoticeMailLeadDays     int
}

func DefaultRules() Rules {
	return Rules{
		ClearanceLeadDays:      11,
		TrainingLeadDays:       7,
		SubmissionFallbackDays: 3,
		NoticeMailLeadDays:     2,
	}
}

func RulesFromConfig(cfg config.FeasibilityConfig) Rules {
	r := DefaultRules()
	if cfg.ClearanceLeadDays > 0 {
		r.ClearanceLeadDays = cfg.ClearanceLeadDays
	}
	if cfg.TrainingLeadDays > 0 {
		r.TrainingLeadDays = cfg.TrainingLeadDays
	}
	if cfg.SubmissionFallbackDays > 0 {
		r.SubmissionFallbackDays = cfg.SubmissionFallbackDays
	}
	if cfg.NoticeMailLeadDays > 0 {
		r.NoticeMailLeadDays = cfg.NoticeMailLeadDays
	}
	return r
}

// Result is produced fresh per evaluation. SelectedRound is empty when no
// round could be chosen; the deadline fields are then zero.
type Result struct {
	SelectedRound      string
	DesiredDate        schedule.Date
	OpenDate           schedule.Date
	SubmissionDeadline schedule.Date
	ClearanceDeadline  schedule.Date
	TrainingDeadline   schedule.Date
	NoticeMailDeadline schedule.Date
	IsPossible         bool
	Messages           []string
}

type Engine struct {
	rules    Rules
	now      func() time.Time
	location *time.Location
	logger   logger.Logger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTimezone sets the zone "today" is taken in. Unknown zones fall back to UTC.
func WithTimezone(name string) Option {
	return func(e *Engine) {
		if name == "" {
			return
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			if e.logger != nil {
				e.logger.Warn("unknown timezone, using UTC", map[string]interface{}{"timezone": name, "error": err})
			}
			loc = time.UTC
		}
		e.location = loc
	}
}

func NewEngine(rules Rules, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{rules: rules, now: time.Now, location: time.UTC, logger: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today is the current calendar day in the engine's zone.
func (e *Engine) Today() schedule.Date {
	return schedule.DateIn(e.now(), e.location)
}

// Evaluate never fails: missing data yields an infeasible Result that says why.
// The registry is only read.
func (e *Engine) Evaluate(c Candidate, registry []schedule.RoundRecord) Result {
	if len(registry) == 0 || c.DesiredDate.IsZero() {
		return Result{DesiredDate: c.DesiredDate, Messages: []string{"데이터를 불러올 수 없습니다."}}
	}

	round, rejection, ok := e.selectRound(c, registry)
	if !ok {
		return rejection
	}

	res := Result{
		SelectedRound: round.RoundKey,
		DesiredDate:   c.DesiredDate,
		OpenDate:      round.OpenDate,
	}

	res.SubmissionDeadline = round.SubmissionDeadline
	if res.SubmissionDeadline.IsZero() {
		res.SubmissionDeadline = round.OpenDate.AddDays(-e.rules.SubmissionFallbackDays)
	}

	anchor := round.RegistrationAnchor()
	if anchor.IsZero() {
		anchor = res.SubmissionDeadline
	}
	res.ClearanceDeadline = anchor.AddDays(-e.rules.ClearanceLeadDays)
	res.TrainingDeadline = anchor.AddDays(-e.rules.TrainingLeadDays)
	if !c.NoticeSentDate.IsZero() {
		res.NoticeMailDeadline = res.ClearanceDeadline.AddDays(-e.rules.NoticeMailLeadDays)
	}

	today := e.Today()
	clearancePassed := today.After(res.ClearanceDeadline)
	trainingPassed := today.After(res.TrainingDeadline)

	clearanceOK := c.ClearanceCompleted || (!c.NoticeSentDate.IsZero() && !clearancePassed)
	trainingOK := c.Training.Completed() || !trainingPassed
	res.IsPossible = clearanceOK && trainingOK

	res.Messages = e.explain(c, res, clearancePassed, trainingPassed)

	if e.logger != nil {
		e.logger.Debug("feasibility evaluated", map[string]interface{}{
			"round":      res.SelectedRound,
			"isPossible": res.IsPossible,
			"today":      today.ISO(),
		})
	}
	return res
}

func (e *Engine) selectRound(c Candidate, registry []schedule.RoundRecord) (schedule.RoundRecord, Result, bool) {
	qualifying := make([]schedule.RoundRecord, 0, len(registry))
	for _, r := range registry {
		if !r.OpenDate.IsZero() && !r.OpenDate.Before(c.DesiredDate) {
			qualifying = append(qualifying, r)
		}
	}
	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].OpenDate.Before(qualifying[j].OpenDate)
	})

	desired := c.DesiredDate.LongLabel()

	switch {
	case c.ClearanceCompleted:
		if len(qualifying) > 0 {
			return qualifying[0], Result{}, true
		}
	case !c.NoticeSentDate.IsZero():
		earliest := c.NoticeSentDate.AddDays(e.rules.ClearanceLeadDays)
		for _, r := range qualifying {
			if !r.OpenDate.Before(earliest) {
				return r, Result{}, true
			}
		}
		return schedule.RoundRecord{}, Result{
			DesiredDate: c.DesiredDate,
			Messages: []string{
				fmt.Sprintf("%s님, 굿리치 위촉을 %s로 원하시는군요.", displayName(c), desired),
				"아쉽지만 이 일정에 굿리치 코드 발급을 현재 스케쥴로는 불가능합니다.",
				"",
				fmt.Sprintf("내용증명 발송일(%s) 기준으로", c.NoticeSentDate.KoreanDate()),
				fmt.Sprintf("최소한 %d일 이후에 위촉이 가능합니다.", e.rules.ClearanceLeadDays),
				"",
				"다른 위촉일정을 확인해 볼까요?",
			},
		}, false
	}

	return schedule.RoundRecord{}, Result{
		DesiredDate: c.DesiredDate,
		Messages: []string{
			fmt.Sprintf("%s님, 굿리치 위촉을 %s로 원하시는군요.", displayName(c), desired),
			"아쉽지만 현재 스케쥴에서 해당 일정을 찾을 수 없습니다.",
			"",
			"협회말소와 등록교육 방법을 안내해 드릴까요?",
			"다른 위촉일정을 확인해 볼까요?",
		},
	}, false
}

func (e *Engine) explain(c Candidate, res Result, clearancePassed, trainingPassed bool) []string {
	var m []string
	add := func(lines ...string) { m = append(m, lines...) }

	add(fmt.Sprintf("%s님, 굿리치 위촉을 %s 원하시는군요.", displayName(c), c.DesiredDate.LongLabel()))
	if res.IsPossible {
		add("위촉 절차를 안내 드릴게요.")
	} else {
		add("현재 상태로는 희망하시는 날짜에 위촉이 어려울 수 있습니다.")
	}
	add("", fmt.Sprintf("📅 예정 위촉 차수: %s", res.SelectedRound), "")

	if c.ClearanceCompleted {
		add("1. 협회말소 ✓", "   협회말소를 완료하셨거나 내용증명을 발송하셨습니다.")
	} else {
		add("1. 협회 말소"+passedFlag(clearancePassed),
			fmt.Sprintf("   %s까지 협회 말소를 완료해주세요.", res.ClearanceDeadline.KoreanDate()))
		if !res.NoticeMailDeadline.IsZero() {
			add(fmt.Sprintf("   내용증명으로 말소하시려면 %s까지 발송하셔야 합니다.", res.NoticeMailDeadline.MonthDay()))
		}
		add("", "   💡 협회말소 절차:", "   - 기존 소속사에 말소 요청", "   - 또는 내용증명 우편으로 직접 협회에 말소 신청")
	}

	held, missing := c.Certifications.Split()
	add("", "2. 판매 자격", "   보유 자격: "+joinCerts(held))
	if len(missing) > 0 {
		add("", "   추가 필요 자격: "+joinCerts(missing), "   → 시험 응시가 필요합니다. 관리자에게 문의해주세요.")
	}

	add("")
	if c.Training.Completed() {
		add("3. 등록교육 ✓", fmt.Sprintf("   %s을 이수하셨습니다.", c.Training.Label()))
	} else {
		add("3. 등록교육"+passedFlag(trainingPassed),
			fmt.Sprintf("   %s까지 등록교육을 이수해주세요.", res.TrainingDeadline.KoreanDate()),
			"", "   💡 등록교육 안내:", "   - 보유 자격에 따라 신규/경력 등록교육 이수", "   - 수료 후 수료증을 위촉지원사이트에 업로드")
	}

	add("", "4. 위촉지원사이트 서류 제출",
		fmt.Sprintf("   %s까지 완료", res.SubmissionDeadline.LongLabel()),
		"   - 정보 입력 및 서류 업로드", "   - 원본 서류 발송", "   - 사원등록 신청 완료")

	add("")
	if c.InsuranceChecked {
		add("5. 보증보험 조회 ✓", "   보증보험 조회를 완료하셨습니다.")
	} else {
		add("5. 보증보험 조회", "   보증보험 조회를 완료해주세요.")
	}

	add("", strings.Repeat("─", 40), "")
	if res.IsPossible {
		add("✅ 위 일정에 맞춰 진행하시면 원하시는 날짜에 위촉이 가능합니다!")
	} else {
		add("⚠️ 위 일정을 맞추기 어려운 경우, 다음 차수로 위촉을 진행하시는 것을 권장드립니다.")
	}
	add("", "📞 자세한 안내가 필요하시면 담당자에게 문의해주세요.")
	return m
}

func passedFlag(passed bool) string {
	if passed {
		return " (⚠️ 기한 경과)"
	}
	return ""
}

func joinCerts(certs []Certification) string {
	parts := make([]string, len(certs))
	for i, c := range certs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func displayName(c Candidate) string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return "지원자"
}
