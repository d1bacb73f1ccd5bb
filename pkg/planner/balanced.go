// Package planner 实现多策略任务排期优化器
package planner

import (
	"time"

	"github.com/paiqi/paiqi/pkg/model"
)

// Balanced 均衡排期：扫描方式与贪心相同，但单日提交量
// 被限制在 剩余工时/截止日期前剩余工作日 左右，避免前松后紧。
// 没有截止日期的任务退化为贪心行为。
type Balanced struct {
	startHour int
	endHour   int
}

// NewBalanced 创建均衡策略
func NewBalanced(startHour, endHour int) *Balanced {
	return &Balanced{startHour: startHour, endHour: endHour}
}

// Name 返回策略名称
func (b *Balanced) Name() string { return KindBalanced.String() }

// Run 执行排期
func (b *Balanced) Run(pc *Context, tasks []*model.Task) []*model.Task {
	return runSequential(pc, tasks, SortByUrgency, b.allocate)
}

// allocate 为单个任务做均摊分配
func (b *Balanced) allocate(pc *Context, t *model.Task) (*model.Task, error) {
	return allocateForward(pc, t, allocOptions{
		cursor:    pc.StartDate,
		deadline:  pc.EffectiveDeadline(t),
		perDayCap: balancedCap,
		startHour: b.startHour,
		endHour:   b.endHour,
	})
}

// balancedCap 随游标推进重新计算的单日上限：
// 剩余工时平摊到当前日期至截止日期之间的工作日
func balancedCap(pc *Context, remaining float64, day time.Time, deadline time.Time) float64 {
	if deadline.IsZero() {
		return remaining
	}
	n := countWorkdays(pc, day, deadline)
	if n <= 0 {
		return remaining
	}
	return remaining / float64(n)
}
