// Package scenario 提供场景测试
package scenario

import (
	"testing"
	"time"

	"github.com/paiqi/paiqi/pkg/clock"
	"github.com/paiqi/paiqi/pkg/holiday"
	"github.com/paiqi/paiqi/pkg/model"
	"github.com/paiqi/paiqi/pkg/planner"
)

// newScenarioPlanner 创建场景测试用的排期器，时钟固定保证可复现
func newScenarioPlanner(hc holiday.Checker) *planner.Planner {
	cfg := planner.DefaultPlannerConfig()
	cfg.MaxHoursPerDay = 8
	return planner.New(cfg, hc, clock.NewFixed(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)))
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("解析日期失败: %v", err)
	}
	return d
}

// newDatedTask 创建带截止日期的任务，deadline 为空表示无截止日期
func newDatedTask(t *testing.T, name string, priority int, hours float64, deadline string) *model.Task {
	t.Helper()
	task := model.NewTask(name, priority, hours)
	if deadline != "" {
		d := mustDay(t, deadline)
		task.Deadline = &d
	}
	return task
}

// assertCapacityRespected 每日分配不得超过容量上限
func assertCapacityRespected(t *testing.T, result *planner.OptimizeResult, maxPerDay float64) {
	t.Helper()
	for date, hours := range result.DailyAllocations {
		if hours > maxPerDay+1e-9 {
			t.Errorf("日期 %s 分配 %.2f 小时，超过容量 %.1f", date, hours, maxPerDay)
		}
	}
}

// assertDeadlinesMet 所有成功排期的任务都应在截止日期前结束
func assertDeadlinesMet(t *testing.T, result *planner.OptimizeResult) {
	t.Helper()
	for _, task := range result.ScheduledTasks {
		if task.Deadline == nil || task.PlannedEnd == nil {
			continue
		}
		if model.FormatDate(*task.PlannedEnd) > model.FormatDate(*task.Deadline) {
			t.Errorf("任务 %s 计划结束 %s 晚于截止 %s",
				task.Name, model.FormatDate(*task.PlannedEnd), model.FormatDate(*task.Deadline))
		}
	}
}

// assertNoRestDayAllocations 周末与节假日不得出现分配
func assertNoRestDayAllocations(t *testing.T, result *planner.OptimizeResult, hc holiday.Checker) {
	t.Helper()
	for date := range result.DailyAllocations {
		d, err := model.ParseDate(date)
		if err != nil {
			t.Fatalf("非法日期键 %q", date)
		}
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("周末 %s 不应有分配", date)
		}
		if hc.IsHoliday(date) {
			t.Errorf("节假日 %s 不应有分配", date)
		}
	}
}
