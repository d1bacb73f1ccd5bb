// Package planner 实现多策略任务排期优化器
package planner

import (
	"time"

	"github.com/paiqi/paiqi/pkg/model"
)

// EarliestDeadline 最早截止优先排期：只按截止日期从早到晚决定顺序，
// 完全忽略优先级，再做贪心前向分配。
type EarliestDeadline struct {
	startHour int
	endHour   int
}

// NewEarliestDeadline 创建最早截止优先策略
func NewEarliestDeadline(startHour, endHour int) *EarliestDeadline {
	return &EarliestDeadline{startHour: startHour, endHour: endHour}
}

// Name 返回策略名称
func (e *EarliestDeadline) Name() string { return KindEarliestDeadline.String() }

// Run 执行排期
func (e *EarliestDeadline) Run(pc *Context, tasks []*model.Task) []*model.Task {
	return runSequential(pc, tasks, func(ts []*model.Task, _ time.Time) []*model.Task {
		return SortByDeadline(ts)
	}, e.allocate)
}

// allocate 为单个任务做前向分配
func (e *EarliestDeadline) allocate(pc *Context, t *model.Task) (*model.Task, error) {
	return allocateForward(pc, t, allocOptions{
		cursor:    pc.StartDate,
		deadline:  pc.EffectiveDeadline(t),
		startHour: e.startHour,
		endHour:   e.endHour,
	})
}
