// Package planner 实现多策略任务排期优化器
package planner

import (
	"time"

	"github.com/paiqi/paiqi/pkg/model"
)

// PriorityFirst 优先级优先排期：只按优先级从高到低决定顺序，
// 完全忽略截止日期的先后，再做贪心前向分配。
type PriorityFirst struct {
	startHour int
	endHour   int
}

// NewPriorityFirst 创建优先级优先策略
func NewPriorityFirst(startHour, endHour int) *PriorityFirst {
	return &PriorityFirst{startHour: startHour, endHour: endHour}
}

// Name 返回策略名称
func (p *PriorityFirst) Name() string { return KindPriorityFirst.String() }

// Run 执行排期
func (p *PriorityFirst) Run(pc *Context, tasks []*model.Task) []*model.Task {
	return runSequential(pc, tasks, func(ts []*model.Task, _ time.Time) []*model.Task {
		return SortByPriority(ts)
	}, p.allocate)
}

// allocate 为单个任务做前向分配
func (p *PriorityFirst) allocate(pc *Context, t *model.Task) (*model.Task, error) {
	return allocateForward(pc, t, allocOptions{
		cursor:    pc.StartDate,
		deadline:  pc.EffectiveDeadline(t),
		startHour: p.startHour,
		endHour:   p.endHour,
	})
}
