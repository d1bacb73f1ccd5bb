package stats

import (
	"math"
	"testing"
)

func TestVariance(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"空序列", nil, 0},
		{"全相等", []float64{4, 4, 4, 4}, 0},
		{"简单方差", []float64{2, 4, 6}, 8.0 / 3.0},
		{"单元素", []float64{5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Variance(tt.values); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Variance() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestGini(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		max      float64
		min      float64
	}{
		{"完全均衡", []float64{5, 5, 5, 5}, 0.01, 0},
		{"完全集中", []float64{0, 0, 0, 20}, 1.0, 0.7},
		{"空序列", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Gini(tt.values)
			if got < tt.min || got > tt.max {
				t.Errorf("Gini() = %v, expected in [%v, %v]", got, tt.min, tt.max)
			}
		})
	}
}

func TestDistributionAnalyzer_Analyze(t *testing.T) {
	analyzer := NewDistributionAnalyzer()

	daily := map[string]float64{
		"2026-03-02": 8,
		"2026-03-03": 8,
		"2026-03-04": 2,
	}

	m := analyzer.Analyze(daily)

	if m.DayCount != 3 {
		t.Errorf("DayCount = %d, expected 3", m.DayCount)
	}
	if math.Abs(m.TotalHours-18) > 1e-9 {
		t.Errorf("TotalHours = %v, expected 18", m.TotalHours)
	}
	if math.Abs(m.AvgHoursPerDay-6) > 1e-9 {
		t.Errorf("AvgHoursPerDay = %v, expected 6", m.AvgHoursPerDay)
	}
	if m.BusiestDate != "2026-03-02" {
		t.Errorf("BusiestDate = %s, expected 2026-03-02", m.BusiestDate)
	}
	if m.IdlestDate != "2026-03-04" {
		t.Errorf("IdlestDate = %s, expected 2026-03-04", m.IdlestDate)
	}
	if math.Abs(m.HoursRange-6) > 1e-9 {
		t.Errorf("HoursRange = %v, expected 6", m.HoursRange)
	}
	if len(m.DayLoads) != 3 || m.DayLoads[0].Hours < m.DayLoads[2].Hours {
		t.Error("DayLoads 应按工时降序排列")
	}
}

func TestDistributionAnalyzer_EmptyInput(t *testing.T) {
	m := NewDistributionAnalyzer().Analyze(nil)
	if m.BalanceScore != 100 {
		t.Errorf("空输入均衡评分应为 100，got %v", m.BalanceScore)
	}
}

func TestDistributionAnalyzer_Compare(t *testing.T) {
	analyzer := NewDistributionAnalyzer()

	lumpy := map[string]float64{"2026-03-02": 12, "2026-03-03": 0.5}
	even := map[string]float64{"2026-03-02": 6, "2026-03-03": 6.5}

	diff := analyzer.Compare(lumpy, even)
	if diff["balance_score_diff"] <= 0 {
		t.Errorf("均匀方案的均衡评分应高于集中方案, diff = %v", diff["balance_score_diff"])
	}
	if diff["variance_diff"] >= 0 {
		t.Errorf("均匀方案的方差应更小, diff = %v", diff["variance_diff"])
	}
}
