package planner

import (
	"time"

	"github.com/paiqi/paiqi/pkg/model"
)

// rrChunkHours 每轮为单个任务提交的时间片大小
const rrChunkHours = 1.0

// RoundRobin 轮转策略：任务按紧迫度排序后轮流领取时间片，
// 每轮每个任务最多提交一个时间片，使多个任务在日期上交错推进。
// 游标只在当天容量耗尽或遇到非工作日时才前移。
type RoundRobin struct {
	startHour int
	endHour   int
}

func NewRoundRobin(startHour, endHour int) *RoundRobin {
	return &RoundRobin{startHour: startHour, endHour: endHour}
}

func (r *RoundRobin) Name() string { return "round_robin" }

// rrState 单个任务的轮转推进状态
type rrState struct {
	task      *model.Task
	remaining float64
	cursor    time.Time
	deadline  time.Time
	j         *journal
	alloc     map[string]float64
	first     time.Time
	last      time.Time
	scanned   int
	done      bool
	failed    bool
}

func (r *RoundRobin) Run(pc *Context, tasks []*model.Task) []*model.Task {
	sorted := SortByUrgency(tasks, pc.StartDate)

	states := make([]*rrState, 0, len(sorted))
	for _, t := range sorted {
		if t.EstimatedHours <= 0 {
			pc.RecordFailure(t, errNoDuration.Error())
			continue
		}
		st := &rrState{
			task:      t.Clone(),
			remaining: t.EstimatedHours,
			cursor:    pc.StartDate,
			j:         newJournal(),
			alloc:     make(map[string]float64),
		}
		if dl := pc.EffectiveDeadline(t); dl != nil {
			st.deadline = dateOnly(*dl)
		}
		states = append(states, st)
	}

	active := len(states)
	for active > 0 {
		for _, st := range states {
			if st.done || st.failed {
				continue
			}
			r.takeTurn(pc, st)
			if st.done || st.failed {
				active--
			}
		}
	}

	scheduled := make([]*model.Task, 0, len(states))
	for _, st := range states {
		if st.done {
			pc.UpdateTask(st.task)
			scheduled = append(scheduled, st.task)
		}
	}
	return scheduled
}

// takeTurn 为任务寻找下一个有容量的工作日并提交一个时间片。
// 超过截止日期时回滚该任务已提交的全部工时，其他任务不受影响。
func (r *RoundRobin) takeTurn(pc *Context, st *rrState) {
	for {
		if st.scanned > maxScanDays {
			r.fail(pc, st, errNoSlot.Error())
			return
		}
		if !st.deadline.IsZero() && st.cursor.After(st.deadline) {
			r.fail(pc, st, errDeadline.Error())
			return
		}
		if !pc.IsWorkday(st.cursor) {
			st.cursor = st.cursor.AddDate(0, 0, 1)
			st.scanned++
			continue
		}
		date := model.FormatDate(st.cursor)
		avail := pc.AvailableAt(date, r.startHour, r.endHour)
		if avail <= hoursEpsilon {
			st.cursor = st.cursor.AddDate(0, 0, 1)
			st.scanned++
			continue
		}

		h := rrChunkHours
		if st.remaining < h {
			h = st.remaining
		}
		if avail < h {
			h = avail
		}
		st.j.commit(pc, date, h)
		st.alloc[date] += h
		st.remaining -= h
		if st.first.IsZero() {
			st.first = st.cursor
		}
		st.last = st.cursor

		if st.remaining <= hoursEpsilon {
			finalizeTask(st.task, st.alloc, st.first, st.last, r.startHour, r.endHour)
			st.done = true
		}
		return
	}
}

func (r *RoundRobin) fail(pc *Context, st *rrState, reason string) {
	st.j.rollbackDeltas(pc)
	pc.RecordFailure(st.task, reason)
	st.failed = true
}
