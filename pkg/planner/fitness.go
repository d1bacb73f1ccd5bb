package planner

import (
	"math"

	"github.com/paiqi/paiqi/pkg/model"
	"github.com/paiqi/paiqi/pkg/stats"
)

// 适应度各分量的权重
const (
	deadlineLateWeight  = 100.0
	varianceWeight      = 10.0
	scheduledTaskWeight = 50.0
)

// FitnessBreakdown 适应度评分的分项明细
type FitnessBreakdown struct {
	PriorityScore   float64 `json:"priority_score"`
	DeadlinePenalty float64 `json:"deadline_penalty"`
	VariancePenalty float64 `json:"variance_penalty"`
	SchedulingBonus float64 `json:"scheduling_bonus"`
	Total           float64 `json:"total"`
}

// FitnessCalculator 计算一个完整排期方案的适应度，
// 搜索类策略用它在候选方案之间择优。
// 分数越高越好：高优先级任务靠前加分，逾期和负载不均扣分。
type FitnessCalculator struct{}

// Calculate 返回方案适应度总分。
// includeBonus 为 true 时按已排任务数加分，
// 用于比较完成度不同的候选方案（少排任务不应该得高分）。
func (fc FitnessCalculator) Calculate(scheduled []*model.Task, allocations map[string]float64, includeBonus bool) float64 {
	return fc.Breakdown(scheduled, allocations, includeBonus).Total
}

// Breakdown 返回适应度的分项明细
func (fc FitnessCalculator) Breakdown(scheduled []*model.Task, allocations map[string]float64, includeBonus bool) FitnessBreakdown {
	var b FitnessBreakdown

	n := len(scheduled)
	for rank, t := range scheduled {
		b.PriorityScore += float64(t.Priority) * float64(n-rank)
		if late := daysLate(t); late > 0 {
			b.DeadlinePenalty += float64(late) * deadlineLateWeight
		}
	}

	if len(allocations) > 0 {
		daily := make([]float64, 0, len(allocations))
		for _, h := range allocations {
			daily = append(daily, h)
		}
		b.VariancePenalty = stats.Variance(daily) * varianceWeight
	}

	if includeBonus {
		b.SchedulingBonus = float64(n) * scheduledTaskWeight
	}

	b.Total = b.PriorityScore - b.DeadlinePenalty - b.VariancePenalty + b.SchedulingBonus
	return b
}

// daysLate 按自然日粒度计算计划结束超出截止日期的天数，
// 未逾期返回 0
func daysLate(t *model.Task) int {
	if t.Deadline == nil || t.PlannedEnd == nil {
		return 0
	}
	end := dateOnly(*t.PlannedEnd)
	due := dateOnly(*t.Deadline)
	if !end.After(due) {
		return 0
	}
	return int(math.Round(end.Sub(due).Hours() / 24))
}
