// Package planner 实现多策略任务排期优化器
package planner

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paiqi/paiqi/pkg/model"
)

// SortByUrgency 按紧迫程度排序（默认排序）：
// 距截止日期天数升序（无截止日期视为无穷远排最后），
// 优先级降序，最后按任务 ID 升序保证确定性。
func SortByUrgency(tasks []*model.Task, startDate time.Time) []*model.Task {
	sorted := make([]*model.Task, len(tasks))
	copy(sorted, tasks)

	sort.Slice(sorted, func(i, j int) bool {
		di := sorted[i].DaysUntilDeadline(startDate)
		dj := sorted[j].DaysUntilDeadline(startDate)
		if di != dj {
			return di < dj
		}
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return lessID(sorted[i].ID, sorted[j].ID)
	})
	return sorted
}

// SortByPriority 仅按优先级降序排序（优先级优先策略用），忽略截止日期
func SortByPriority(tasks []*model.Task) []*model.Task {
	sorted := make([]*model.Task, len(tasks))
	copy(sorted, tasks)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return lessID(sorted[i].ID, sorted[j].ID)
	})
	return sorted
}

// SortByDeadline 仅按截止日期升序排序（最早截止优先策略用），忽略优先级
func SortByDeadline(tasks []*model.Task) []*model.Task {
	sorted := make([]*model.Task, len(tasks))
	copy(sorted, tasks)

	sort.Slice(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Deadline, sorted[j].Deadline
		switch {
		case ti == nil && tj == nil:
			return lessID(sorted[i].ID, sorted[j].ID)
		case ti == nil:
			return false
		case tj == nil:
			return true
		case !ti.Equal(*tj):
			return ti.Before(*tj)
		}
		return lessID(sorted[i].ID, sorted[j].ID)
	})
	return sorted
}

// SortTopological 对任务做拓扑排序（Kahn 算法），前置依赖在前。
// 同层任务按紧迫程度出队，保证结果确定。
// 第二个返回值为构成循环依赖的任务，它们不出现在排序结果中。
func SortTopological(tasks []*model.Task, startDate time.Time) ([]*model.Task, []*model.Task) {
	inSet := make(map[uuid.UUID]*model.Task, len(tasks))
	for _, t := range tasks {
		inSet[t.ID] = t
	}

	// 只统计集合内部的依赖
	indegree := make(map[uuid.UUID]int, len(tasks))
	dependents := make(map[uuid.UUID][]uuid.UUID)
	for _, t := range tasks {
		indegree[t.ID] = 0
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if _, ok := inSet[dep]; !ok {
				continue
			}
			indegree[t.ID]++
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}

	var ready []*model.Task
	for _, t := range tasks {
		if indegree[t.ID] == 0 {
			ready = append(ready, t)
		}
	}

	ordered := make([]*model.Task, 0, len(tasks))
	for len(ready) > 0 {
		ready = SortByUrgency(ready, startDate)
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)

		for _, depID := range dependents[next.ID] {
			indegree[depID]--
			if indegree[depID] == 0 {
				ready = append(ready, inSet[depID])
			}
		}
	}

	if len(ordered) == len(tasks) {
		return ordered, nil
	}

	// 剩余入度非零的任务构成循环
	inOrdered := make(map[uuid.UUID]bool, len(ordered))
	for _, t := range ordered {
		inOrdered[t.ID] = true
	}
	var cyclic []*model.Task
	for _, t := range tasks {
		if !inOrdered[t.ID] {
			cyclic = append(cyclic, t)
		}
	}
	cyclic = SortByUrgency(cyclic, startDate)
	return ordered, cyclic
}

// lessID 按 UUID 字节序比较，作为所有排序的最终决胜键
func lessID(a, b uuid.UUID) bool {
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
