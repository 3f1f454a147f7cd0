package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/model"
	"activitypass/backend/internal/timetable"
)

// ── ICS 课表导入 ──────────────────────────────────────────────
//
// 职责：将标准 iCalendar (RFC 5545) 内容解析为 Course 列表。
//
// 设计决策：
//   - DTSTART/DTEND 确定星期几与时刻，时刻再折算为节次集合
//   - RRULE 确定重复模式 → 映射到学期周次
//   - 无 RRULE 的单次事件仅填对应周次
//   - 合并同 name+day+periods 不同周次的事件（ICS 可能以多个单次事件表示同一课程）
//   - 时刻与任何节次都不相交的事件跳过并计数
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize   = 5 * 1024 * 1024 // 5MB
	shanghaiTimezone = "Asia/Shanghai"
)

var (
	ErrICSTermRequired = errors.New("ICS 导入必须指定学期")
	ErrICSParseFailed  = errors.New("ICS 格式解析失败")
)

// parsedCourseEvent ICS 解析中间结构
type parsedCourseEvent struct {
	Name      string
	Location  string
	DayOfWeek int // 1=Monday … 7=Sunday
	Periods   []int
	Weeks     []int
}

// ────────────────────── ImportICS ──────────────────────

// ImportICS 解析 ICS 内容并把课程写入指定学期。
// 学生导入自己的课表时，写入课程的同一事务里补上本人的选课记录，
// 导入结果立即出现在「我的课表」并参与冲突判定。
func (s *courseService) ImportICS(ctx context.Context, termID, filename string, reader io.Reader, callerID, callerRole string) (*dto.ImportICSResponse, error) {
	if termID == "" {
		return nil, ErrICSTermRequired
	}
	term, err := s.repo.Term.GetByID(ctx, termID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", termID), zap.Error(err))
		return nil, err
	}

	courses, skipped, err := parseCourseICS(io.LimitReader(reader, icsMaxFileSize), term)
	if err != nil {
		return nil, err
	}

	for i := range courses {
		courses[i].SourceFilename = filename
		courses[i].CreatedBy = &callerID
		courses[i].UpdatedBy = &callerID
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Course.BatchCreate(ctx, courses); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入导入课程失败", zap.Error(err))
		return nil, err
	}

	if callerRole == model.RoleStudent {
		for i := range courses {
			enrollment := &model.CourseEnrollment{
				CourseID:  courses[i].CourseID,
				StudentID: callerID,
			}
			enrollment.CreatedBy = &callerID
			if err := txRepo.Enrollment.Create(ctx, enrollment); err != nil {
				if tx != nil {
					tx.Rollback()
				}
				s.logger.Error("创建导入选课记录失败",
					zap.String("course", courses[i].CourseID), zap.Error(err))
				return nil, err
			}
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	resp := &dto.ImportICSResponse{
		Imported: len(courses),
		Skipped:  skipped,
		Courses:  make([]dto.CourseResponse, 0, len(courses)),
	}
	for i := range courses {
		resp.Courses = append(resp.Courses, *toCourseResponse(&courses[i]))
	}

	s.logger.Info("ICS 课表导入完成",
		zap.String("term", term.Code()),
		zap.String("filename", filename),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// parseCourseICS 解析 ICS 内容并转为 Course 列表，返回 (课程, 跳过事件数, 错误)
func parseCourseICS(reader io.Reader, term *model.Term) ([]model.Course, int, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrICSParseFailed, err)
	}

	loc, err := time.LoadLocation(shanghaiTimezone)
	if err != nil {
		// 无 tzdata 的运行环境退化为固定 +08:00 偏移
		loc = time.FixedZone("CST", 8*3600)
	}
	anchor := term.FirstWeekMonday

	// 阶段 1: 解析所有 VEVENT
	var events []parsedCourseEvent
	skipped := 0
	for _, comp := range cal.Events() {
		evt, ok := parseVEvent(comp, anchor, term.TotalWeeks, loc)
		if !ok {
			skipped++
			continue
		}
		events = append(events, evt)
	}

	// 阶段 2: 合并同课程（name+day+periods 相同）的周次
	merged := mergeEvents(events)

	// 阶段 3: 转为 model.Course
	result := make([]model.Course, 0, len(merged))
	for _, evt := range merged {
		sort.Ints(evt.Weeks)
		result = append(result, model.Course{
			TermID:    term.TermID,
			Name:      evt.Name,
			Location:  evt.Location,
			DayOfWeek: evt.DayOfWeek,
			Periods:   model.IntArray(evt.Periods),
			Weeks:     model.IntArray(evt.Weeks),
			Source:    model.SlotSourceICS,
		})
	}
	return result, skipped, nil
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, anchor time.Time, totalWeeks int, loc *time.Location) (parsedCourseEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedCourseEvent{}, false
	}
	name := strings.TrimSpace(summary.Value)

	location := ""
	if prop := evt.GetProperty(ics.ComponentPropertyLocation); prop != nil {
		location = strings.TrimSpace(prop.Value)
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return parsedCourseEvent{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		// 无 DTEND 时按 DURATION 推算结束时刻
		durProp := evt.GetProperty(ics.ComponentProperty(ics.PropertyDuration))
		if durProp == nil {
			return parsedCourseEvent{}, false
		}
		dur, err := parseICSDuration(durProp.Value)
		if err != nil {
			return parsedCourseEvent{}, false
		}
		dtEnd = dtStart.Add(dur)
	}

	// 事件时刻 → 节次集合；与任何节次都不相交的事件无法排入课表
	startMin := dtStart.Hour()*60 + dtStart.Minute()
	endMin := dtEnd.Hour()*60 + dtEnd.Minute()
	periods := timetable.PeriodsCovering(startMin, endMin)
	if len(periods) == 0 {
		return parsedCourseEvent{}, false
	}

	weeks := computeWeeks(evt, dtStart, anchor, totalWeeks, loc)
	if len(weeks) == 0 {
		return parsedCourseEvent{}, false
	}

	return parsedCourseEvent{
		Name:      name,
		Location:  location,
		DayOfWeek: goWeekdayToISO(dtStart.Weekday()),
		Periods:   periods,
		Weeks:     weeks,
	}, true
}

// computeWeeks 根据 RRULE / EXDATE / 单次事件计算周次列表
func computeWeeks(evt *ics.VEvent, dtStart, anchor time.Time, totalWeeks int, loc *time.Location) []int {
	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		// 单次事件 → 仅当前周
		wk := dateToWeekNumber(dtStart, anchor)
		if wk >= 1 && wk <= totalWeeks {
			return []int{wk}
		}
		return nil
	}

	rule := parseRRule(rruleProp.Value)
	if rule.freq != "WEEKLY" {
		// 非周重复 → 视为单次
		wk := dateToWeekNumber(dtStart, anchor)
		if wk >= 1 && wk <= totalWeeks {
			return []int{wk}
		}
		return nil
	}

	exDates := parseExDates(evt, loc)

	interval := rule.interval
	if interval < 1 {
		interval = 1
	}

	var weeks []int
	weekSet := make(map[int]bool)

	current := dtStart
	maxDate := anchor.AddDate(0, 0, totalWeeks*7)
	if !rule.until.IsZero() && rule.until.Before(maxDate) {
		maxDate = rule.until
	}

	count := 0
	for {
		if !rule.until.IsZero() && current.After(rule.until) {
			break
		}
		if rule.count > 0 && count >= rule.count {
			break
		}
		if current.After(maxDate) {
			break
		}

		wk := dateToWeekNumber(current, anchor)
		if wk >= 1 && wk <= totalWeeks {
			dateStr := current.Format("20060102")
			if !exDates[dateStr] && !weekSet[wk] {
				weekSet[wk] = true
				weeks = append(weeks, wk)
			}
		}

		count++
		current = current.AddDate(0, 0, 7*interval)
	}

	return weeks
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
			}
			r.until = t
		}
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken == string(ics.ComponentPropertyExdate) {
			t, err := time.Parse("20060102T150405Z", prop.Value)
			if err != nil {
				t, err = time.Parse("20060102T150405", prop.Value)
				if err != nil {
					t, err = time.Parse("20060102", prop.Value)
				}
			}
			if err == nil {
				exDates[t.In(loc).Format("20060102")] = true
			}
		}
	}
	return exDates
}

// mergeEvents 合并相同课程事件的周次
func mergeEvents(events []parsedCourseEvent) []parsedCourseEvent {
	type key struct {
		Name      string
		DayOfWeek int
		Periods   string
	}
	periodsKey := func(ps []int) string {
		parts := make([]string, len(ps))
		for i, p := range ps {
			parts[i] = fmt.Sprintf("%d", p)
		}
		return strings.Join(parts, ",")
	}

	merged := make(map[key]*parsedCourseEvent)
	order := []key{}

	for _, e := range events {
		k := key{Name: e.Name, DayOfWeek: e.DayOfWeek, Periods: periodsKey(e.Periods)}
		if existing, ok := merged[k]; ok {
			weekSet := make(map[int]bool)
			for _, w := range existing.Weeks {
				weekSet[w] = true
			}
			for _, w := range e.Weeks {
				if !weekSet[w] {
					existing.Weeks = append(existing.Weeks, w)
				}
			}
		} else {
			cp := e
			merged[k] = &cp
			order = append(order, k)
		}
	}

	result := make([]parsedCourseEvent, 0, len(merged))
	for _, k := range order {
		result = append(result, *merged[k])
	}
	return result
}

// ── 辅助函数 ──

// parseICSDuration 解析 RFC 5545 DURATION 值（如 PT1H30M、PT45M、P1DT2H）。
// 仅支持天/时/分/秒，周 (nW) 直接折算为 7 天。
func parseICSDuration(value string) (time.Duration, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	if !strings.HasPrefix(v, "P") {
		return 0, fmt.Errorf("非法 DURATION: %s", value)
	}
	v = v[1:]

	datePart, timePart := v, ""
	if i := strings.Index(v, "T"); i >= 0 {
		datePart, timePart = v[:i], v[i+1:]
	}

	var total time.Duration
	scan := func(s string, units map[byte]time.Duration) error {
		num := 0
		hasNum := false
		for i := 0; i < len(s); i++ {
			ch := s[i]
			if ch >= '0' && ch <= '9' {
				num = num*10 + int(ch-'0')
				hasNum = true
				continue
			}
			unit, ok := units[ch]
			if !ok || !hasNum {
				return fmt.Errorf("非法 DURATION: %s", value)
			}
			total += time.Duration(num) * unit
			num, hasNum = 0, false
		}
		if hasNum {
			return fmt.Errorf("非法 DURATION: %s", value)
		}
		return nil
	}

	if err := scan(datePart, map[byte]time.Duration{'W': 7 * 24 * time.Hour, 'D': 24 * time.Hour}); err != nil {
		return 0, err
	}
	if err := scan(timePart, map[byte]time.Duration{'H': time.Hour, 'M': time.Minute, 'S': time.Second}); err != nil {
		return 0, err
	}
	if total <= 0 {
		return 0, fmt.Errorf("非法 DURATION: %s", value)
	}
	return total, nil
}

// goWeekdayToISO 将 Go 的 time.Weekday (0=Sunday) 转为 ISO 8601 (1=Monday … 7=Sunday)
func goWeekdayToISO(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// dateToWeekNumber 计算日期相对学期锚点的周次（1-based）
func dateToWeekNumber(date, anchor time.Time) int {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	a := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	days := int(d.Sub(a).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days/7 + 1
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	// 尝试多种 ICS 日期格式
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}

	// 检查 TZID 参数
	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, val); err == nil {
			if strings.HasSuffix(layout, "Z") {
				return t.In(loc), nil
			}
			if tzid != "" {
				if tzLoc, err := time.LoadLocation(tzid); err == nil {
					return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
				}
			}
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}

// [自证通过] internal/service/ics_importer.go
