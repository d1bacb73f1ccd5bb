// Package planner 实现多策略任务排期优化器
package planner

import (
	"github.com/paiqi/paiqi/pkg/model"
)

// Backward 倒排排期（Just-in-Time）：游标从有效截止日期向前回溯，
// 任务尽可能晚开始、刚好在截止前完成。无截止日期的任务
// 以开始日期后 7 天为回溯起点。
type Backward struct {
	startHour int
	endHour   int
}

// NewBackward 创建倒排策略
func NewBackward(startHour, endHour int) *Backward {
	return &Backward{startHour: startHour, endHour: endHour}
}

// Name 返回策略名称
func (b *Backward) Name() string { return KindBackward.String() }

// Run 执行排期
func (b *Backward) Run(pc *Context, tasks []*model.Task) []*model.Task {
	return runSequential(pc, tasks, SortByUrgency, b.allocate)
}

// allocate 为单个任务做倒排分配
func (b *Backward) allocate(pc *Context, t *model.Task) (*model.Task, error) {
	return allocateBackward(pc, t, allocOptions{
		deadline:  pc.EffectiveDeadline(t),
		startHour: b.startHour,
		endHour:   b.endHour,
	})
}
