package planner

import (
	"testing"

	"github.com/paiqi/paiqi/pkg/holiday"
	"github.com/paiqi/paiqi/pkg/model"
)

func TestWeekdayOnly_FridayToTuesday(t *testing.T) {
	// 10 小时任务，计划周五到周二：5 个自然日里只有 3 个工作日
	tk := model.NewTask("跨周末任务", 3, 10)
	start := mustDate(t, "2026-03-06")
	end := mustDate(t, "2026-03-10")
	tk.PlannedStart = &start
	tk.PlannedEnd = &end

	got := WeekdayOnly{}.DailyHours(tk, nil)

	if len(got) != 3 {
		t.Fatalf("分配天数 = %d, 期望 3", len(got))
	}
	for _, date := range []string{"2026-03-06", "2026-03-09", "2026-03-10"} {
		if !closeTo(got[date], 10.0/3, 0.01) {
			t.Errorf("%s = %v, 期望约 3.33", date, got[date])
		}
	}
	for _, weekend := range []string{"2026-03-07", "2026-03-08"} {
		if _, ok := got[weekend]; ok {
			t.Errorf("周末 %s 不应出现在分配表中（应缺失而非为零）", weekend)
		}
	}

	var sum float64
	for _, h := range got {
		sum += h
	}
	if !closeTo(sum, 10, 1e-9) {
		t.Errorf("分配总和 = %v, 期望精确等于预估工时 10", sum)
	}
}

func TestWeekdayOnly_WeekendOnlyPeriod(t *testing.T) {
	tk := model.NewTask("周末任务", 3, 4)
	start := mustDate(t, "2026-03-07")
	end := mustDate(t, "2026-03-08")
	tk.PlannedStart = &start
	tk.PlannedEnd = &end

	got := WeekdayOnly{}.DailyHours(tk, nil)
	if got == nil {
		t.Fatal("纯周末区间应返回空表而不是 nil")
	}
	if len(got) != 0 {
		t.Errorf("纯周末区间应返回空表, 实际 %v", got)
	}
}

func TestWeekdayOnly_NoPlannedPeriod(t *testing.T) {
	tk := model.NewTask("未排期任务", 3, 4)
	if got := (WeekdayOnly{}).DailyHours(tk, nil); len(got) != 0 {
		t.Errorf("无计划区间应返回空表, 实际 %v", got)
	}
}

func TestActualSchedule_ExcludesHolidays(t *testing.T) {
	hc := holiday.NewStatic()
	hc.Add("2026-03-03", "调休")

	tk := model.NewTask("节假日任务", 3, 8)
	start := mustDate(t, "2026-03-02")
	end := mustDate(t, "2026-03-05")
	tk.PlannedStart = &start
	tk.PlannedEnd = &end

	got := ActualSchedule{}.DailyHours(tk, hc)

	if len(got) != 3 {
		t.Fatalf("分配天数 = %d, 期望排除节假日后剩 3", len(got))
	}
	if _, ok := got["2026-03-03"]; ok {
		t.Error("节假日不应出现在分配表中")
	}
	for _, date := range []string{"2026-03-02", "2026-03-04", "2026-03-05"} {
		if !closeTo(got[date], 8.0/3, 0.01) {
			t.Errorf("%s = %v, 期望约 2.67", date, got[date])
		}
	}
}

func TestCalculator_VerbatimCopyWhenAllocated(t *testing.T) {
	tk := scheduledTask("已排期任务", 6, "2026-03-02", 2, 3)
	calc := NewWorkloadCalculator(WeekdayOnly{}, holiday.Nop{})

	got := calc.TaskDailyHours(tk)
	if len(got) != 3 || got["2026-03-02"] != 2 {
		t.Fatalf("应原样返回已有分配表, 实际 %v", got)
	}

	// 返回的是副本，改动不应影响任务本身
	got["2026-03-02"] = 99
	if tk.DailyAllocations["2026-03-02"] != 2 {
		t.Error("修改返回值影响了任务自身的分配表")
	}
}
