package aggregate

import (
	"strings"
	"time"
)

// DateRange 闭区间 [Start, End]，零值的一端表示不限
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains 判断 t 是否落在区间内（含两端）
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// IsUnbounded 两端都不限
func (r DateRange) IsUnbounded() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// StartOfDay 当天 00:00:00
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay 当天最后一纳秒
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MonthRange now 所在自然月，从 1 号 00:00 到月末最后一刻
func MonthRange(now time.Time) DateRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return DateRange{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// WeekRange now 所在的周日到周六
func WeekRange(now time.Time) DateRange {
	start := StartOfDay(now).AddDate(0, 0, -int(now.Weekday()))
	return DateRange{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Nanosecond)}
}

// QuarterRange now 所在季度
func QuarterRange(now time.Time) DateRange {
	firstMonth := time.Month((int(now.Month())-1)/3*3 + 1)
	start := time.Date(now.Year(), firstMonth, 1, 0, 0, 0, 0, now.Location())
	return DateRange{Start: start, End: start.AddDate(0, 3, 0).Add(-time.Nanosecond)}
}

// YearRange now 所在自然年
func YearRange(now time.Time) DateRange {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return DateRange{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
}

// LastSevenDays 截至今天的最近 7 个自然日，每个星期几恰好出现一次
func LastSevenDays(now time.Time) DateRange {
	return DateRange{
		Start: StartOfDay(now).AddDate(0, 0, -6),
		End:   EndOfDay(now),
	}
}

// 报表周期
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
	PeriodCustom  = "custom"
)

// PresetRange 预设周期对应的区间；custom 或未知周期返回 false
func PresetRange(period string, now time.Time) (DateRange, bool) {
	switch strings.ToLower(period) {
	case PeriodWeek:
		return WeekRange(now), true
	case PeriodMonth:
		return MonthRange(now), true
	case PeriodQuarter:
		return QuarterRange(now), true
	case PeriodYear:
		return YearRange(now), true
	default:
		return DateRange{}, false
	}
}

// IsKnownPeriod 判断周期参数是否合法，空串视为未指定
func IsKnownPeriod(period string) bool {
	switch strings.ToLower(period) {
	case "", PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodCustom:
		return true
	}
	return false
}
