// Package model 定义排期引擎的核心数据模型
package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"     // 待排期
	TaskInProgress TaskStatus = "in_progress" // 进行中
	TaskCompleted  TaskStatus = "completed"   // 已完成
	TaskCanceled   TaskStatus = "canceled"    // 已取消
)

// Task 任务
type Task struct {
	BaseModel
	Name             string             `json:"name" db:"name"`
	Description      string             `json:"description,omitempty" db:"description"`
	Priority         int                `json:"priority" db:"priority"`               // 优先级（数值越大越紧急）
	EstimatedHours   float64            `json:"estimated_hours" db:"estimated_hours"` // 预估工时（小时），0 表示不可排期
	PlannedStart     *time.Time         `json:"planned_start,omitempty" db:"planned_start"`
	PlannedEnd       *time.Time         `json:"planned_end,omitempty" db:"planned_end"`
	Deadline         *time.Time         `json:"deadline,omitempty" db:"deadline"`
	IsFixed          bool               `json:"is_fixed" db:"is_fixed"` // 固定任务不参与重排
	Status           TaskStatus         `json:"status" db:"status"`
	ParentID         *uuid.UUID         `json:"parent_id,omitempty" db:"parent_id"`
	DependsOn        []uuid.UUID        `json:"depends_on,omitempty" db:"depends_on"`
	Tags             []string           `json:"tags,omitempty" db:"tags"`
	DailyAllocations map[string]float64 `json:"daily_allocations,omitempty" db:"daily_allocations"` // 日期 -> 工时
}

// NewTask 创建新任务
func NewTask(name string, priority int, estimatedHours float64) *Task {
	return &Task{
		BaseModel:      NewBaseModel(),
		Name:           name,
		Priority:       priority,
		EstimatedHours: estimatedHours,
		Status:         TaskPending,
	}
}

// IsFinished 任务是否已终结（完成、取消或归档）
func (t *Task) IsFinished() bool {
	return t.Status == TaskCompleted || t.Status == TaskCanceled || t.IsArchived()
}

// IsSchedulable 任务是否可排期（有正的预估工时且未终结）
func (t *Task) IsSchedulable() bool {
	return t.EstimatedHours > 0 && !t.IsFinished()
}

// IsScheduled 任务是否已有计划区间。
// 分配明细可以缺失（外部导入的排期），此时按分布策略推导。
func (t *Task) IsScheduled() bool {
	return t.PlannedStart != nil && t.PlannedEnd != nil
}

// IsPinned 任务排期是否不可移动（固定任务或进行中的任务）
func (t *Task) IsPinned() bool {
	return t.IsFixed || t.Status == TaskInProgress
}

// AllocatedHours 已分配工时合计
func (t *Task) AllocatedHours() float64 {
	var sum float64
	for _, h := range t.DailyAllocations {
		sum += h
	}
	return sum
}

// DaysUntilDeadline 距截止日期的天数；无截止日期返回 +Inf
func (t *Task) DaysUntilDeadline(from time.Time) float64 {
	if t.Deadline == nil {
		return math.Inf(1)
	}
	return t.Deadline.Sub(from).Hours() / 24
}

// HasDependencies 是否存在前置依赖
func (t *Task) HasDependencies() bool {
	return len(t.DependsOn) > 0
}

// DependsOnTask 是否依赖指定任务
func (t *Task) DependsOnTask(id uuid.UUID) bool {
	for _, dep := range t.DependsOn {
		if dep == id {
			return true
		}
	}
	return false
}

// Clone 深拷贝任务（排期器只操作副本，不改动调用方的原始对象）
func (t *Task) Clone() *Task {
	c := *t
	if t.PlannedStart != nil {
		v := *t.PlannedStart
		c.PlannedStart = &v
	}
	if t.PlannedEnd != nil {
		v := *t.PlannedEnd
		c.PlannedEnd = &v
	}
	if t.Deadline != nil {
		v := *t.Deadline
		c.Deadline = &v
	}
	if t.DeletedAt != nil {
		v := *t.DeletedAt
		c.DeletedAt = &v
	}
	if t.ParentID != nil {
		v := *t.ParentID
		c.ParentID = &v
	}
	if t.DependsOn != nil {
		c.DependsOn = make([]uuid.UUID, len(t.DependsOn))
		copy(c.DependsOn, t.DependsOn)
	}
	if t.Tags != nil {
		c.Tags = make([]string, len(t.Tags))
		copy(c.Tags, t.Tags)
	}
	if t.DailyAllocations != nil {
		c.DailyAllocations = make(map[string]float64, len(t.DailyAllocations))
		for d, h := range t.DailyAllocations {
			c.DailyAllocations[d] = h
		}
	}
	return &c
}
