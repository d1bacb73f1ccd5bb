package planner

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paiqi/paiqi/pkg/model"
	"github.com/paiqi/paiqi/pkg/stats"
)

// SchedulingFailure 单个任务的排期失败记录。
// 失败从不中止运行，调用方总是同时拿到成功与失败两份列表。
type SchedulingFailure struct {
	TaskID   uuid.UUID `json:"task_id"`
	TaskName string    `json:"task_name"`
	Reason   string    `json:"reason"`
}

// OptimizeResult 一次优化运行的完整结果。
// ScheduledTasks 是带排期字段的任务副本，调用方的原始任务不被修改。
type OptimizeResult struct {
	Algorithm        string                     `json:"algorithm"`
	StartDate        string                     `json:"start_date"`
	MaxHoursPerDay   float64                    `json:"max_hours_per_day"`
	ScheduledTasks   []*model.Task              `json:"scheduled_tasks"`
	FailedTasks      []SchedulingFailure        `json:"failed_tasks"`
	DailyAllocations map[string]float64         `json:"daily_allocations"`
	Fitness          FitnessBreakdown           `json:"fitness"`
	Distribution     *stats.DistributionMetrics `json:"distribution"`
	Summary          Summary                    `json:"summary"`
	Elapsed          time.Duration              `json:"-"`
}

// Summary 运行结果的简要统计
type Summary struct {
	TotalTasks     int     `json:"total_tasks"`
	ScheduledCount int     `json:"scheduled_count"`
	FailedCount    int     `json:"failed_count"`
	SuccessRate    float64 `json:"success_rate"`
	TotalHours     float64 `json:"total_hours"`
	FirstDate      string  `json:"first_date"`
	LastDate       string  `json:"last_date"`
	SpanDays       int     `json:"span_days"`
	ElapsedMillis  int64   `json:"elapsed_ms"`
}

// buildResult 组装一次运行的结果：容量表快照、适应度明细与统计摘要
func buildResult(pc *Context, algorithm string, scheduled []*model.Task, elapsed time.Duration) *OptimizeResult {
	allocations := pc.Allocations()
	failures := pc.Failures()

	res := &OptimizeResult{
		Algorithm:        algorithm,
		StartDate:        model.FormatDate(pc.StartDate),
		MaxHoursPerDay:   pc.MaxHoursPerDay,
		ScheduledTasks:   scheduled,
		FailedTasks:      failures,
		DailyAllocations: allocations,
		Fitness:          FitnessCalculator{}.Breakdown(scheduled, allocations, false),
		Distribution:     stats.NewDistributionAnalyzer().Analyze(allocations),
		Elapsed:          elapsed,
	}

	s := Summary{
		TotalTasks:     len(scheduled) + len(failures),
		ScheduledCount: len(scheduled),
		FailedCount:    len(failures),
		ElapsedMillis:  elapsed.Milliseconds(),
	}
	if s.TotalTasks > 0 {
		s.SuccessRate = float64(s.ScheduledCount) / float64(s.TotalTasks)
	}
	for _, h := range allocations {
		s.TotalHours += h
	}
	if len(allocations) > 0 {
		dates := make([]string, 0, len(allocations))
		for d := range allocations {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		s.FirstDate = dates[0]
		s.LastDate = dates[len(dates)-1]
		first, err1 := model.ParseDate(s.FirstDate)
		last, err2 := model.ParseDate(s.LastDate)
		if err1 == nil && err2 == nil {
			s.SpanDays = int(math.Round(last.Sub(first).Hours()/24)) + 1
		}
	}
	res.Summary = s
	return res
}
