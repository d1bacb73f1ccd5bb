// Package stats 提供排期统计分析功能
package stats

import (
	"math"
	"sort"
)

// Mean 计算平均值
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance 计算方差
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// StdDev 计算标准差
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Range 计算极值
func Range(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// Gini 计算基尼系数 (0=完全均衡, 1=完全不均衡)
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// DayLoad 单日负载
type DayLoad struct {
	Date      string  `json:"date"`
	Hours     float64 `json:"hours"`
	Deviation float64 `json:"deviation"` // 与日均值的偏差百分比
}

// DistributionMetrics 工时分布指标
type DistributionMetrics struct {
	WorkloadGini     float64   `json:"workload_gini"`     // 每日工时基尼系数
	WorkloadVariance float64   `json:"workload_variance"` // 每日工时方差
	WorkloadStdDev   float64   `json:"workload_std_dev"`  // 每日工时标准差
	AvgHoursPerDay   float64   `json:"avg_hours_per_day"` // 日均工时
	MaxHours         float64   `json:"max_hours"`         // 单日最大工时
	MinHours         float64   `json:"min_hours"`         // 单日最小工时
	HoursRange       float64   `json:"hours_range"`       // 工时极差
	TotalHours       float64   `json:"total_hours"`       // 总工时
	DayCount         int       `json:"day_count"`         // 有分配的天数
	BusiestDate      string    `json:"busiest_date"`      // 最忙的一天
	IdlestDate       string    `json:"idlest_date"`       // 最闲的一天
	DayLoads         []DayLoad `json:"day_loads"`         // 每日负载明细（按工时降序）
	BalanceScore     float64   `json:"balance_score"`     // 均衡性评分 (0-100)
}

// DistributionAnalyzer 工时分布分析器
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer 创建工时分布分析器
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Analyze 分析每日工时分布
func (a *DistributionAnalyzer) Analyze(daily map[string]float64) *DistributionMetrics {
	if len(daily) == 0 {
		return &DistributionMetrics{BalanceScore: 100}
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	hours := make([]float64, len(dates))
	total := 0.0
	for i, d := range dates {
		hours[i] = daily[d]
		total += daily[d]
	}

	avg := Mean(hours)
	variance := Variance(hours)
	stdDev := math.Sqrt(variance)
	maxH, minH := Range(hours)
	gini := Gini(hours)

	var busiest, idlest string
	for _, d := range dates {
		if daily[d] == maxH && busiest == "" {
			busiest = d
		}
		if daily[d] == minH && idlest == "" {
			idlest = d
		}
	}

	loads := make([]DayLoad, len(dates))
	for i, d := range dates {
		dev := 0.0
		if avg > 0 {
			dev = (daily[d] - avg) / avg * 100
		}
		loads[i] = DayLoad{Date: d, Hours: daily[d], Deviation: dev}
	}
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].Hours != loads[j].Hours {
			return loads[i].Hours > loads[j].Hours
		}
		return loads[i].Date < loads[j].Date
	})

	return &DistributionMetrics{
		WorkloadGini:     gini,
		WorkloadVariance: variance,
		WorkloadStdDev:   stdDev,
		AvgHoursPerDay:   avg,
		MaxHours:         maxH,
		MinHours:         minH,
		HoursRange:       maxH - minH,
		TotalHours:       total,
		DayCount:         len(dates),
		BusiestDate:      busiest,
		IdlestDate:       idlest,
		DayLoads:         loads,
		BalanceScore:     a.balanceScore(gini, stdDev, avg),
	}
}

// Compare 比较两个分配方案的均衡性
func (a *DistributionAnalyzer) Compare(daily1, daily2 map[string]float64) map[string]float64 {
	m1 := a.Analyze(daily1)
	m2 := a.Analyze(daily2)

	return map[string]float64{
		"gini_diff":          m2.WorkloadGini - m1.WorkloadGini,
		"variance_diff":      m2.WorkloadVariance - m1.WorkloadVariance,
		"balance_score_diff": m2.BalanceScore - m1.BalanceScore,
		"plan1_balance":      m1.BalanceScore,
		"plan2_balance":      m2.BalanceScore,
	}
}

// balanceScore 计算均衡性评分
func (a *DistributionAnalyzer) balanceScore(gini, stdDev, avg float64) float64 {
	const (
		giniWeight = 0.6
		cvWeight   = 0.4
	)

	// 基尼系数转换为分数 (0=100分, 1=0分)
	giniScore := (1 - gini) * 100

	// 变异系数越低分数越高
	cvScore := 100.0
	if avg > 0 {
		cv := stdDev / avg
		cvScore = math.Max(0, 100-cv*200)
	}

	score := giniWeight*giniScore + cvWeight*cvScore
	return math.Max(0, math.Min(100, score))
}
