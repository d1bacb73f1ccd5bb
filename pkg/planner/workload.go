// Package planner 实现多策略任务排期优化器
package planner

import (
	"time"

	"github.com/paiqi/paiqi/pkg/holiday"
	"github.com/paiqi/paiqi/pkg/model"
)

// WorkloadStrategy 工时分布策略：把任务的计划区间展开成 日期->工时 表
type WorkloadStrategy interface {
	// Name 返回策略名称
	Name() string

	// DailyHours 计算任务在计划区间内的每日工时分布
	DailyHours(t *model.Task, hc holiday.Checker) map[string]float64
}

// WeekdayOnly 仅工作日均摊策略：把预估工时平均分配到
// [PlannedStart, PlannedEnd] 内的周一至周五。
// 区间内没有任何工作日时返回空表，这是定义内的结果而非错误。
type WeekdayOnly struct{}

// Name 返回策略名称
func (WeekdayOnly) Name() string { return "weekday_only" }

// DailyHours 计算每日工时分布
func (WeekdayOnly) DailyHours(t *model.Task, _ holiday.Checker) map[string]float64 {
	return spreadEvenly(t, func(d time.Time) bool {
		wd := d.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	})
}

// ActualSchedule 实际日历策略：在工作日均摊的基础上再排除节假日。
// 仅用于展示，优化过程不使用。
type ActualSchedule struct{}

// Name 返回策略名称
func (ActualSchedule) Name() string { return "actual_schedule" }

// DailyHours 计算每日工时分布
func (ActualSchedule) DailyHours(t *model.Task, hc holiday.Checker) map[string]float64 {
	if hc == nil {
		hc = holiday.Nop{}
	}
	return spreadEvenly(t, func(d time.Time) bool {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return false
		}
		return !hc.IsHoliday(model.FormatDate(d))
	})
}

// spreadEvenly 把预估工时平均分配到计划区间内满足条件的日期
func spreadEvenly(t *model.Task, include func(time.Time) bool) map[string]float64 {
	result := make(map[string]float64)
	if t.PlannedStart == nil || t.PlannedEnd == nil || t.EstimatedHours <= 0 {
		return result
	}

	start := dateOnly(*t.PlannedStart)
	end := dateOnly(*t.PlannedEnd)
	if end.Before(start) {
		return result
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if include(d) {
			days = append(days, model.FormatDate(d))
		}
	}
	if len(days) == 0 {
		return result
	}

	perDay := t.EstimatedHours / float64(len(days))
	for _, d := range days {
		result[d] = perDay
	}
	return result
}

// WorkloadCalculator 工时计算器
type WorkloadCalculator struct {
	strategy WorkloadStrategy
	holidays holiday.Checker
}

// NewWorkloadCalculator 创建工时计算器
func NewWorkloadCalculator(strategy WorkloadStrategy, hc holiday.Checker) *WorkloadCalculator {
	if strategy == nil {
		strategy = WeekdayOnly{}
	}
	if hc == nil {
		hc = holiday.Nop{}
	}
	return &WorkloadCalculator{strategy: strategy, holidays: hc}
}

// TaskDailyHours 获取任务的每日工时表。任务已带分配表时原样返回副本，
// 否则按分布策略从计划区间推导。纯函数，无副作用。
func (c *WorkloadCalculator) TaskDailyHours(t *model.Task) map[string]float64 {
	if len(t.DailyAllocations) > 0 {
		out := make(map[string]float64, len(t.DailyAllocations))
		for d, h := range t.DailyAllocations {
			out[d] = h
		}
		return out
	}
	return c.strategy.DailyHours(t, c.holidays)
}
