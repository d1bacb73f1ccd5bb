// Package planner 实现多策略任务排期优化器
package planner

import (
	"errors"
	"time"

	"github.com/paiqi/paiqi/pkg/model"
)

// 任务级排期失败原因。这些文案会原样出现在失败列表里。
var (
	errNoDuration  = errors.New("缺少预估工时，无法排期")
	errNoSlot      = errors.New("无法在约束内找到合适的时间段")
	errDeadline    = errors.New("截止日期前时间不足")
	errBeforeStart = errors.New("开始日期前时间不足，无法倒排")
	errCycle       = errors.New("检测到循环依赖")
)

// capFunc 每日提交上限函数（均衡策略会限制单日提交量）。
// deadline 为零值表示没有截止约束。
type capFunc func(pc *Context, remaining float64, day time.Time, deadline time.Time) float64

// allocOptions 一次分配尝试的扫描参数
type allocOptions struct {
	cursor    time.Time  // 扫描起点
	deadline  *time.Time // 有效截止日期，nil 表示不限
	perDayCap capFunc    // 每日提交上限，nil 表示不限
	startHour int
	endHour   int
}

// allocateForward 前向扫描分配：游标从起点向后推进，跳过非工作日，
// 每个工作日提交 min(剩余, 可用) 工时，直到任务工时全部落位。
// 游标越过截止日期仍有剩余时，回滚本次尝试的全部提交并返回失败。
func allocateForward(pc *Context, src *model.Task, o allocOptions) (*model.Task, error) {
	if src.EstimatedHours <= 0 {
		return nil, errNoDuration
	}

	task := src.Clone()
	remaining := task.EstimatedHours
	alloc := make(map[string]float64)
	j := newJournal()

	var firstDay, lastDay time.Time
	var deadlineDay time.Time
	if o.deadline != nil {
		deadlineDay = dateOnly(*o.deadline)
	}

	cursor := dateOnly(o.cursor)
	for scanned := 0; remaining > hoursEpsilon; scanned++ {
		if scanned > maxScanDays {
			j.rollback(pc)
			return nil, errNoSlot
		}
		if !deadlineDay.IsZero() && cursor.After(deadlineDay) {
			j.rollback(pc)
			return nil, errDeadline
		}
		if !pc.IsWorkday(cursor) {
			cursor = cursor.AddDate(0, 0, 1)
			continue
		}

		avail := pc.AvailableAt(model.FormatDate(cursor), o.startHour, o.endHour)
		if o.perDayCap != nil {
			if c := o.perDayCap(pc, remaining, cursor, deadlineDay); c < avail {
				avail = c
			}
		}

		if avail > hoursEpsilon {
			h := remaining
			if avail < h {
				h = avail
			}
			date := model.FormatDate(cursor)
			j.commit(pc, date, h)
			alloc[date] += h
			remaining -= h
			if firstDay.IsZero() {
				firstDay = cursor
			}
			lastDay = cursor
		}

		if remaining > hoursEpsilon {
			cursor = cursor.AddDate(0, 0, 1)
		}
	}

	finalizeTask(task, alloc, firstDay, lastDay, o.startHour, o.endHour)
	return task, nil
}

// allocateBackward 倒排分配（Just-in-Time）：游标从有效截止日期
// （无截止日期时为开始日期后 7 天）向前回溯收集工时，任务尽可能晚完成。
// 游标退到开始日期之前仍有剩余时回滚并失败。
func allocateBackward(pc *Context, src *model.Task, o allocOptions) (*model.Task, error) {
	if src.EstimatedHours <= 0 {
		return nil, errNoDuration
	}

	task := src.Clone()
	remaining := task.EstimatedHours
	alloc := make(map[string]float64)
	j := newJournal()

	var firstDay, lastDay time.Time

	cursor := pc.StartDate.AddDate(0, 0, 7)
	if o.deadline != nil {
		cursor = dateOnly(*o.deadline)
	}

	for scanned := 0; remaining > hoursEpsilon; scanned++ {
		if scanned > maxScanDays {
			j.rollback(pc)
			return nil, errNoSlot
		}
		if cursor.Before(pc.StartDate) {
			j.rollback(pc)
			return nil, errBeforeStart
		}
		if !pc.IsWorkday(cursor) {
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}

		avail := pc.AvailableAt(model.FormatDate(cursor), o.startHour, o.endHour)
		if avail > hoursEpsilon {
			h := remaining
			if avail < h {
				h = avail
			}
			date := model.FormatDate(cursor)
			j.commit(pc, date, h)
			alloc[date] += h
			remaining -= h
			if lastDay.IsZero() {
				lastDay = cursor
			}
			firstDay = cursor
		}

		if remaining > hoursEpsilon {
			cursor = cursor.AddDate(0, 0, -1)
		}
	}

	finalizeTask(task, alloc, firstDay, lastDay, o.startHour, o.endHour)
	return task, nil
}

// finalizeTask 把分配结果落到任务副本上：
// 计划开始/结束取首末两个分配日的工作时段边界
func finalizeTask(t *model.Task, alloc map[string]float64, first, last time.Time, startHour, endHour int) {
	start := time.Date(first.Year(), first.Month(), first.Day(), startHour, 0, 0, 0, first.Location())
	end := time.Date(last.Year(), last.Month(), last.Day(), endHour, 0, 0, 0, last.Location())
	t.PlannedStart = &start
	t.PlannedEnd = &end
	t.DailyAllocations = alloc
}

// countWorkdays 统计 [from, to] 区间内的工作日数量（含两端）
func countWorkdays(pc *Context, from, to time.Time) int {
	count := 0
	for d, scanned := dateOnly(from), 0; !d.After(dateOnly(to)) && scanned <= maxScanDays; d, scanned = d.AddDate(0, 0, 1), scanned+1 {
		if pc.IsWorkday(d) {
			count++
		}
	}
	return count
}
