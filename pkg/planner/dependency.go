package planner

import (
	"time"

	"github.com/paiqi/paiqi/pkg/model"
)

// DependencyAware 依赖感知策略：任务按拓扑序排期，
// 前置任务先落位，后继任务的计划开始不早于所有前置任务的计划结束。
// 循环依赖中的任务全部记为失败，不中断其余任务的排期。
type DependencyAware struct {
	startHour int
	endHour   int
}

func NewDependencyAware(startHour, endHour int) *DependencyAware {
	return &DependencyAware{startHour: startHour, endHour: endHour}
}

func (d *DependencyAware) Name() string { return "dependency_aware" }

func (d *DependencyAware) Run(pc *Context, tasks []*model.Task) []*model.Task {
	ordered, cyclic := SortTopological(tasks, pc.StartDate)
	for _, t := range cyclic {
		pc.RecordFailure(t, errCycle.Error())
	}

	scheduled := make([]*model.Task, 0, len(ordered))
	for _, t := range ordered {
		cursor := pc.StartDate
		if gate := d.dependencyGate(pc, t); gate != nil && gate.After(cursor) {
			cursor = *gate
		}

		placed, err := allocateForward(pc, t, allocOptions{
			cursor:    cursor,
			deadline:  pc.EffectiveDeadline(t),
			startHour: d.startHour,
			endHour:   d.endHour,
		})
		if err != nil {
			pc.RecordFailure(t, err.Error())
			continue
		}
		pc.UpdateTask(placed)
		scheduled = append(scheduled, placed)
	}
	return scheduled
}

// dependencyGate 返回所有已排期前置任务中最晚计划结束日的次日。
// 未排期、已取消或已归档的前置任务不构成约束。
func (d *DependencyAware) dependencyGate(pc *Context, t *model.Task) *time.Time {
	var latest *time.Time
	for _, depID := range t.DependsOn {
		dep := pc.GetTask(depID)
		if dep == nil || dep.PlannedEnd == nil {
			continue
		}
		if dep.Status == model.TaskCanceled || dep.IsArchived() {
			continue
		}
		if latest == nil || dep.PlannedEnd.After(*latest) {
			latest = dep.PlannedEnd
		}
	}
	if latest == nil {
		return nil
	}
	gate := dateOnly(*latest).AddDate(0, 0, 1)
	return &gate
}
