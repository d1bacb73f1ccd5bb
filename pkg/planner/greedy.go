// Package planner 实现多策略任务排期优化器
package planner

import (
	"github.com/paiqi/paiqi/pkg/model"
)

// Greedy 贪心前向排期：按紧迫程度逐个任务从开始日期向后扫描，
// 每个工作日填到容量上限，任务尽早完成。
type Greedy struct {
	startHour int
	endHour   int
}

// NewGreedy 创建贪心策略
func NewGreedy(startHour, endHour int) *Greedy {
	return &Greedy{startHour: startHour, endHour: endHour}
}

// Name 返回策略名称
func (g *Greedy) Name() string { return KindGreedy.String() }

// Run 执行排期
func (g *Greedy) Run(pc *Context, tasks []*model.Task) []*model.Task {
	return runSequential(pc, tasks, SortByUrgency, g.allocate)
}

// allocate 为单个任务做前向分配
func (g *Greedy) allocate(pc *Context, t *model.Task) (*model.Task, error) {
	return allocateForward(pc, t, allocOptions{
		cursor:    pc.StartDate,
		deadline:  pc.EffectiveDeadline(t),
		startHour: g.startHour,
		endHour:   g.endHour,
	})
}
