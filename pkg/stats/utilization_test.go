package stats

import (
	"math"
	"testing"
)

func TestUtilizationAnalyzer_Analyze(t *testing.T) {
	analyzer := NewUtilizationAnalyzer(8)

	// 2026-03-02 是周一
	allocations := map[string]float64{
		"2026-03-02": 8, // 排满
		"2026-03-03": 4, // 半满
		// 03-04 空闲
		"2026-03-07": 2, // 周六，不计入容量
	}

	m := analyzer.Analyze(allocations, "2026-03-02", "2026-03-08")

	if m.WorkdayCount != 5 {
		t.Errorf("WorkdayCount = %d, expected 5", m.WorkdayCount)
	}
	if math.Abs(m.TotalCapacity-40) > 1e-9 {
		t.Errorf("TotalCapacity = %v, expected 40", m.TotalCapacity)
	}
	if math.Abs(m.TotalCommitted-14) > 1e-9 {
		t.Errorf("TotalCommitted = %v, expected 14", m.TotalCommitted)
	}
	if len(m.FullDays) != 1 || m.FullDays[0] != "2026-03-02" {
		t.Errorf("FullDays = %v, expected [2026-03-02]", m.FullDays)
	}
	if len(m.OverloadedDays) != 0 {
		t.Errorf("OverloadedDays 应为空, got %v", m.OverloadedDays)
	}
	if len(m.IdleDays) != 3 {
		t.Errorf("IdleDays = %v, expected 3 个（03-04/05/06）", m.IdleDays)
	}

	sat := m.DailyUtilization["2026-03-07"]
	if !sat.IsWeekend || sat.Capacity != 0 {
		t.Error("周六应标记为周末且容量为 0")
	}
}

func TestUtilizationAnalyzer_Overload(t *testing.T) {
	analyzer := NewUtilizationAnalyzer(6)

	allocations := map[string]float64{"2026-03-03": 7.5}
	m := analyzer.Analyze(allocations, "2026-03-03", "2026-03-03")

	if len(m.OverloadedDays) != 1 {
		t.Fatalf("应检测到 1 个超载日, got %v", m.OverloadedDays)
	}
}

func TestUtilizationAnalyzer_InvalidRange(t *testing.T) {
	analyzer := NewUtilizationAnalyzer(8)

	m := analyzer.Analyze(nil, "2026-03-10", "2026-03-02")
	if m.WorkdayCount != 0 || len(m.DailyUtilization) != 0 {
		t.Error("结束早于开始时应返回空指标")
	}
}
