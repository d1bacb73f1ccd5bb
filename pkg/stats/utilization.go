// Package stats 提供排期统计分析功能
package stats

import (
	"time"
)

// DayUtilization 单日容量利用情况
type DayUtilization struct {
	Date      string  `json:"date"`
	Committed float64 `json:"committed"` // 已提交工时
	Capacity  float64 `json:"capacity"`  // 当日容量
	Rate      float64 `json:"rate"`      // 利用率 (%)
	IsWeekend bool    `json:"is_weekend"`
}

// UtilizationMetrics 容量利用率指标
type UtilizationMetrics struct {
	TotalCapacity   float64                   `json:"total_capacity"`   // 区间内工作日总容量
	TotalCommitted  float64                   `json:"total_committed"`  // 总已提交工时
	OverallRate     float64                   `json:"overall_rate"`     // 整体利用率 (%)
	DailyUtilization map[string]DayUtilization `json:"daily_utilization"`
	OverloadedDays  []string                  `json:"overloaded_days"` // 超出容量的日期（不应出现）
	FullDays        []string                  `json:"full_days"`       // 排满的日期
	IdleDays        []string                  `json:"idle_days"`       // 空闲工作日
	WorkdayCount    int                       `json:"workday_count"`
}

// UtilizationAnalyzer 容量利用率分析器
type UtilizationAnalyzer struct {
	maxHoursPerDay float64
}

// NewUtilizationAnalyzer 创建容量利用率分析器
func NewUtilizationAnalyzer(maxHoursPerDay float64) *UtilizationAnalyzer {
	return &UtilizationAnalyzer{maxHoursPerDay: maxHoursPerDay}
}

// Analyze 分析 [startDate, endDate] 区间内的容量利用情况
func (u *UtilizationAnalyzer) Analyze(allocations map[string]float64, startDate, endDate string) *UtilizationMetrics {
	metrics := &UtilizationMetrics{
		DailyUtilization: make(map[string]DayUtilization),
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return metrics
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil || end.Before(start) {
		return metrics
	}

	const epsilon = 1e-9

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		weekday := d.Weekday()
		isWeekend := weekday == time.Saturday || weekday == time.Sunday

		committed := allocations[date]
		capacity := u.maxHoursPerDay
		if isWeekend {
			capacity = 0
		}

		rate := 0.0
		if capacity > 0 {
			rate = committed / capacity * 100
		}

		metrics.DailyUtilization[date] = DayUtilization{
			Date:      date,
			Committed: committed,
			Capacity:  capacity,
			Rate:      rate,
			IsWeekend: isWeekend,
		}

		metrics.TotalCommitted += committed

		if isWeekend {
			continue
		}

		metrics.WorkdayCount++
		metrics.TotalCapacity += capacity

		switch {
		case committed > capacity+epsilon:
			metrics.OverloadedDays = append(metrics.OverloadedDays, date)
		case committed >= capacity-epsilon:
			metrics.FullDays = append(metrics.FullDays, date)
		case committed == 0:
			metrics.IdleDays = append(metrics.IdleDays, date)
		}
	}

	if metrics.TotalCapacity > 0 {
		metrics.OverallRate = metrics.TotalCommitted / metrics.TotalCapacity * 100
	}

	return metrics
}
