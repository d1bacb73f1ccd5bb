package scenario

import (
	"math"
	"testing"

	"github.com/paiqi/paiqi/pkg/advisor"
	"github.com/paiqi/paiqi/pkg/holiday"
	"github.com/paiqi/paiqi/pkg/model"
	"github.com/paiqi/paiqi/pkg/planner"
	planvalidator "github.com/paiqi/paiqi/pkg/validator"
)

// TestGoldenWeekSchedule 假期跨越测试：
// 国庆长假挡在中间，排期要整段跳过并仍在截止前完工。
func TestGoldenWeekSchedule(t *testing.T) {
	hc := holiday.NewStatic()
	hc.AddRange(mustDay(t, "2026-10-01"), mustDay(t, "2026-10-08"), "国庆节")

	task := newDatedTask(t, "双十一大促准备", 7, 40, "2026-10-15")

	p := newScenarioPlanner(hc)
	result, err := p.Optimize(planner.OptimizeParams{
		StartDate:      mustDay(t, "2026-09-28"),
		MaxHoursPerDay: 8,
		Algorithm:      "greedy",
	}, []*model.Task{task})
	if err != nil {
		t.Fatalf("排期执行失败: %v", err)
	}
	if result.Summary.FailedCount != 0 {
		t.Fatalf("失败数 = %d, 期望 0", result.Summary.FailedCount)
	}

	t.Logf("跨假期排期: %s ~ %s, 共 %d 个工作日",
		result.Summary.FirstDate, result.Summary.LastDate, result.Distribution.DayCount)

	assertNoRestDayAllocations(t, result, hc)
	assertDeadlinesMet(t, result)

	scheduled := result.ScheduledTasks[0]
	if model.FormatDate(*scheduled.PlannedEnd) != "2026-10-12" {
		t.Errorf("完工日 = %s, 期望跳过长假后的 2026-10-12", model.FormatDate(*scheduled.PlannedEnd))
	}
	if result.Distribution.DayCount != 5 {
		t.Errorf("占用天数 = %d, 期望 5", result.Distribution.DayCount)
	}

	// 排期结果自检应当干净
	v := planvalidator.NewPlanValidator(nil)
	conflicts := v.Validate(result.ScheduledTasks, result.DailyAllocations)
	if summary := v.Summarize(conflicts); summary.Errors != 0 {
		t.Errorf("冲突检查发现 %d 个错误: %+v", summary.Errors, conflicts)
	}
}

// TestRebalanceAfterSkew 再平衡建议测试：
// 一天 8 小时、其余四天各 1 小时的畸形分布，建议应当把高峰日削平。
func TestRebalanceAfterSkew(t *testing.T) {
	task := newDatedTask(t, "数据修复", 5, 8, "2026-11-30")
	task.DailyAllocations = map[string]float64{"2026-11-02": 8}

	daily := map[string]float64{
		"2026-11-02": 8,
		"2026-11-03": 1,
		"2026-11-04": 1,
		"2026-11-05": 1,
		"2026-11-06": 1,
	}

	r := advisor.NewRebalancer(holiday.Nop{})
	recs := r.Recommend([]*model.Task{task}, daily, 8, nil)
	if len(recs) != 1 {
		t.Fatalf("建议数 = %d, 期望 1", len(recs))
	}

	rec := recs[0]
	t.Logf("建议: %s", rec.Reason)

	if rec.TaskName != "数据修复" {
		t.Errorf("建议任务 = %s, 期望 数据修复", rec.TaskName)
	}
	if rec.FromDate != "2026-11-02" {
		t.Errorf("来源日 = %s, 期望高峰日 2026-11-02", rec.FromDate)
	}
	if rec.ToDate != "2026-11-03" {
		t.Errorf("目标日 = %s, 期望 2026-11-03", rec.ToDate)
	}
	if rec.Hours != 3 {
		t.Errorf("挪动工时 = %.1f, 期望 3", rec.Hours)
	}
	// 方差 7.84 -> 3.04
	if math.Abs(rec.Gain-4.8) > 1e-6 {
		t.Errorf("方差收益 = %.4f, 期望 4.8", rec.Gain)
	}
	if rec.Rank != 1 {
		t.Errorf("排名 = %d, 期望 1", rec.Rank)
	}

	// 建议只针对待排任务，进行中的任务不应被挪动
	task.Status = model.TaskInProgress
	if recs := r.Recommend([]*model.Task{task}, daily, 8, nil); len(recs) != 0 {
		t.Errorf("进行中任务不应产生建议，实际 %d 条", len(recs))
	}
}
