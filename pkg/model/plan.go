// Package model 定义排期引擎的核心数据模型
package model

// Plan 一次排期优化运行的持久化记录
type Plan struct {
	BaseModel
	Name           string             `json:"name" db:"name"`
	Algorithm      string             `json:"algorithm" db:"algorithm"`
	StartDate      string             `json:"start_date" db:"start_date"` // YYYY-MM-DD
	MaxHoursPerDay float64            `json:"max_hours_per_day" db:"max_hours_per_day"`
	ForceOverride  bool               `json:"force_override" db:"force_override"`
	Params         JSONMap            `json:"params,omitempty" db:"params"` // 搜索参数（种子、代数等）
	Fitness        float64            `json:"fitness" db:"fitness"`
	ScheduledCount int                `json:"scheduled_count" db:"scheduled_count"`
	FailedCount    int                `json:"failed_count" db:"failed_count"`
	TotalHours     float64            `json:"total_hours" db:"total_hours"`
	Allocations    map[string]float64 `json:"allocations,omitempty" db:"allocations"` // 最终每日工时快照
	DurationMillis int64              `json:"duration_ms" db:"duration_ms"`
}

// SuccessRate 排期成功率
func (p *Plan) SuccessRate() float64 {
	total := p.ScheduledCount + p.FailedCount
	if total == 0 {
		return 0
	}
	return float64(p.ScheduledCount) / float64(total)
}
