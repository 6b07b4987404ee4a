package calendar

import "testing"

// ── 测试辅助 ──

func testWindow() Window {
	return Window{
		StartYear:           2026,
		StartMonth:          2,
		StartMonthDays:      28,
		Cycle1StartDay:      9,
		Cycle23StartDay:     9,
		Cycle1HolidayWeeks:  []int{8, 9},
		Cycle23HolidayWeeks: []int{8, 9},
		TotalWeeks:          16,
	}
}

// ── ResolveClassDate 测试 ──

func TestWindow_ResolveClassDate_Cycle1Monday(t *testing.T) {
	w := testWindow()

	year, month, day := w.ResolveClassDate("LEI", 1)
	if year != 2026 || month != 2 || day != 9 {
		t.Errorf("期望 2026-02-09，实际 %d-%02d-%02d", year, month, day)
	}
}

func TestWindow_ResolveClassDate_Cycle1Friday(t *testing.T) {
	w := testWindow()

	year, month, day := w.ResolveClassDate("LEI", 5)
	if year != 2026 || month != 2 || day != 13 {
		t.Errorf("期望 2026-02-13，实际 %d-%02d-%02d", year, month, day)
	}
}

func TestWindow_ResolveClassDate_CycleSelection(t *testing.T) {
	w := testWindow()
	w.Cycle23StartDay = 10

	// 非 'L' 开头的课程代号走周期 2/3 的开学日
	_, _, day := w.ResolveClassDate("MEI", 1)
	if day != 10 {
		t.Errorf("周期 2/3 期望 day=10，实际 %d", day)
	}

	_, _, day = w.ResolveClassDate("LEI", 1)
	if day != 9 {
		t.Errorf("周期 1 期望 day=9，实际 %d", day)
	}
}

func TestWindow_ResolveClassDate_MonthOverflow(t *testing.T) {
	// 开学日靠近月底时，取模进位到下一个月
	w := testWindow()
	w.Cycle1StartDay = 25

	year, month, day := w.ResolveClassDate("LEI", 5)
	// offset = 25-1+5 = 29; 29 % 28 = 1; month = 2 + 29/28 = 3
	if year != 2026 || month != 3 || day != 1 {
		t.Errorf("期望 2026-03-01，实际 %d-%02d-%02d", year, month, day)
	}
}

// ── ExceptionDates 测试 ──

func TestWindow_ExceptionDates_MonthRollover(t *testing.T) {
	w := testWindow()
	start := DateTime{Year: 2026, Month: 2, Day: 9, Hour: 9, Minute: 0}

	dates := w.ExceptionDates(start, []int{8, 9})
	if len(dates) != 2 {
		t.Fatalf("期望 2 个排除日期，实际 %d", len(dates))
	}

	// 2026-02-09 + 49 天 = 2026-03-30（二月 28 天，跨月进位）
	if dates[0] != (DateTime{Year: 2026, Month: 3, Day: 30, Hour: 9, Minute: 0}) {
		t.Errorf("第 8 周期望 2026-03-30 09:00，实际 %+v", dates[0])
	}
	// 2026-02-09 + 56 天 = 2026-04-06
	if dates[1] != (DateTime{Year: 2026, Month: 4, Day: 6, Hour: 9, Minute: 0}) {
		t.Errorf("第 9 周期望 2026-04-06 09:00，实际 %+v", dates[1])
	}
}

func TestWindow_ExceptionDates_YearRollover(t *testing.T) {
	w := testWindow()
	start := DateTime{Year: 2026, Month: 12, Day: 15, Hour: 14, Minute: 30}

	dates := w.ExceptionDates(start, []int{4})
	if len(dates) != 1 {
		t.Fatalf("期望 1 个排除日期，实际 %d", len(dates))
	}
	// 2026-12-15 + 21 天 = 2027-01-05，跨年进位且保留时刻
	if dates[0] != (DateTime{Year: 2027, Month: 1, Day: 5, Hour: 14, Minute: 30}) {
		t.Errorf("期望 2027-01-05 14:30，实际 %+v", dates[0])
	}
}

func TestWindow_ExceptionDates_Empty(t *testing.T) {
	w := testWindow()
	start := DateTime{Year: 2026, Month: 2, Day: 9, Hour: 9, Minute: 0}

	if dates := w.ExceptionDates(start, nil); dates != nil {
		t.Errorf("空假期列表期望 nil，实际 %+v", dates)
	}
}
