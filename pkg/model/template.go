// Package model 定义排期引擎的核心数据模型
package model

// TaskTemplate 周期性任务模板
type TaskTemplate struct {
	BaseModel
	Name        string   `json:"name" db:"name"`
	TemplateNo  string   `json:"template_no" db:"template_no"`
	Level       int      `json:"level" db:"level"`               // 强度等级 1-6，决定每周工时
	WeeklyHours float64  `json:"weekly_hours" db:"weekly_hours"` // 每周总工时
	Priority    int      `json:"priority" db:"priority"`
	Frequency   string   `json:"frequency" db:"frequency"` // weekly/twice_weekly/three_times_weekly/daily
	StartDate   string   `json:"start_date" db:"start_date"`
	Tags        []string `json:"tags,omitempty" db:"tags"`
	Status      string   `json:"status" db:"status"` // active/paused/expired
}

// IsActive 模板是否生效
func (tt *TaskTemplate) IsActive() bool {
	return tt.Status == "active"
}
