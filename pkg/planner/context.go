// Package planner 实现多策略任务排期优化器
package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/paiqi/paiqi/pkg/clock"
	"github.com/paiqi/paiqi/pkg/holiday"
	"github.com/paiqi/paiqi/pkg/model"
)

const (
	// hoursEpsilon 工时比较容差
	hoursEpsilon = 1e-6

	// maxScanDays 日期游标扫描上限，防止容量为零时无限前进
	maxScanDays = 3650
)

// Context 排期上下文。每次优化运行独占一个实例，单一写者，
// 不跨运行共享。
type Context struct {
	// 输入配置
	StartDate      time.Time
	MaxHoursPerDay float64

	// 能力依赖（由调用方显式注入，空实现表示不启用）
	Holidays holiday.Checker
	Clock    clock.Clock

	// 当前排期状态
	allocations map[string]float64 // 日期 -> 已提交工时
	failures    []SchedulingFailure

	// 索引缓存
	taskMap map[uuid.UUID]*model.Task

	calc *WorkloadCalculator
}

// NewContext 创建排期上下文。节假日检查器与时钟为必填依赖，
// 不启用时传入 holiday.Nop{} 与 clock.None{}。
func NewContext(startDate time.Time, maxHoursPerDay float64, hc holiday.Checker, clk clock.Clock) *Context {
	if hc == nil {
		hc = holiday.Nop{}
	}
	if clk == nil {
		clk = clock.None{}
	}
	return &Context{
		StartDate:      dateOnly(startDate),
		MaxHoursPerDay: maxHoursPerDay,
		Holidays:       hc,
		Clock:          clk,
		allocations:    make(map[string]float64),
		failures:       make([]SchedulingFailure, 0),
		taskMap:        make(map[uuid.UUID]*model.Task),
		calc:           NewWorkloadCalculator(WeekdayOnly{}, hc),
	}
}

// SetTasks 设置任务快照并重建索引
func (c *Context) SetTasks(tasks []*model.Task) {
	c.taskMap = make(map[uuid.UUID]*model.Task, len(tasks))
	for _, t := range tasks {
		c.taskMap[t.ID] = t
	}
}

// UpdateTask 用排期后的副本更新索引（供依赖检查读取新排期）
func (c *Context) UpdateTask(t *model.Task) {
	c.taskMap[t.ID] = t
}

// GetTask 按 ID 获取任务
func (c *Context) GetTask(id uuid.UUID) *model.Task {
	return c.taskMap[id]
}

// InitializeAllocations 用已有排期的任务预占全局容量表。
// 已终结任务始终排除；固定任务与进行中的任务始终计入；
// 其余待排期任务仅在 forceOverride=false 时计入（否则本次运行会重排它们）。
// 必须在任何新分配之前执行。
func (c *Context) InitializeAllocations(allTasks []*model.Task, forceOverride bool) map[string]float64 {
	for _, t := range allTasks {
		if t.IsFinished() {
			continue
		}
		if !t.IsPinned() && forceOverride {
			continue
		}
		if !t.IsScheduled() {
			continue
		}
		for date, hours := range c.calc.TaskDailyHours(t) {
			c.allocations[date] += hours
		}
	}
	return c.Allocations()
}

// Committed 某日期已提交的工时
func (c *Context) Committed(date string) float64 {
	return c.allocations[date]
}

// Available 某日期的剩余容量（不含工作日/节假日判断）
func (c *Context) Available(date string) float64 {
	avail := c.MaxHoursPerDay - c.allocations[date]
	if avail < 0 {
		return 0
	}
	return avail
}

// AvailableAt 某日期在给定工作时段下的剩余容量。
// 当该日期即为时钟的"今天"时，会扣除已流逝的工作时段。
func (c *Context) AvailableAt(date string, startHour, endHour int) float64 {
	avail := c.Available(date)
	if avail <= hoursEpsilon {
		return 0
	}

	now := c.Clock.Now()
	if now.IsZero() || model.FormatDate(now) != date {
		return avail
	}

	nowFrac := float64(now.Hour()) + float64(now.Minute())/60
	left := float64(endHour) - nowFrac
	if nowFrac < float64(startHour) {
		left = float64(endHour - startHour)
	}
	if left < 0 {
		left = 0
	}
	if left < avail {
		return left
	}
	return avail
}

// IsWorkday 是否为工作日（排除周末与已配置的节假日）
func (c *Context) IsWorkday(d time.Time) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.Holidays.IsHoliday(model.FormatDate(d))
}

// EffectiveDeadline 任务的有效截止日期：自身截止日期，
// 否则沿父任务链向上继承；都没有则返回 nil。
func (c *Context) EffectiveDeadline(t *model.Task) *time.Time {
	if t.Deadline != nil {
		return t.Deadline
	}
	visited := map[uuid.UUID]bool{t.ID: true}
	cur := t
	for cur.ParentID != nil {
		parent := c.taskMap[*cur.ParentID]
		if parent == nil || visited[parent.ID] {
			return nil
		}
		visited[parent.ID] = true
		if parent.Deadline != nil {
			return parent.Deadline
		}
		cur = parent
	}
	return nil
}

// RecordFailure 记录任务排期失败（从不中止整个运行）
func (c *Context) RecordFailure(t *model.Task, reason string) {
	c.failures = append(c.failures, SchedulingFailure{
		TaskID:   t.ID,
		TaskName: t.Name,
		Reason:   reason,
	})
}

// Failures 返回失败列表
func (c *Context) Failures() []SchedulingFailure {
	out := make([]SchedulingFailure, len(c.failures))
	copy(out, c.failures)
	return out
}

// Allocations 返回容量表快照
func (c *Context) Allocations() map[string]float64 {
	out := make(map[string]float64, len(c.allocations))
	for d, h := range c.allocations {
		out[d] = h
	}
	return out
}

// CloneForTrial 克隆上下文用于候选方案试算：容量表深拷贝，
// 失败列表清空，任务索引浅拷贝（任务本身在试算中只读）。
func (c *Context) CloneForTrial() *Context {
	clone := &Context{
		StartDate:      c.StartDate,
		MaxHoursPerDay: c.MaxHoursPerDay,
		Holidays:       c.Holidays,
		Clock:          c.Clock,
		allocations:    make(map[string]float64, len(c.allocations)),
		failures:       make([]SchedulingFailure, 0),
		taskMap:        make(map[uuid.UUID]*model.Task, len(c.taskMap)),
		calc:           c.calc,
	}
	for d, h := range c.allocations {
		clone.allocations[d] = h
	}
	for id, t := range c.taskMap {
		clone.taskMap[id] = t
	}
	return clone
}

// journal 记录一次分配尝试对容量表的改动：
// 每个受影响日期只保存一条改动前的快照，外加本次尝试的提交量
type journal struct {
	touched map[string]bool
	entries []journalEntry
	deltas  map[string]float64
}

type journalEntry struct {
	date    string
	prev    float64
	existed bool
}

func newJournal() *journal {
	return &journal{
		touched: make(map[string]bool),
		deltas:  make(map[string]float64),
	}
}

// commit 向容量表提交工时并登记改动前的状态
func (j *journal) commit(c *Context, date string, hours float64) {
	if !j.touched[date] {
		prev, existed := c.allocations[date]
		j.entries = append(j.entries, journalEntry{date: date, prev: prev, existed: existed})
		j.touched[date] = true
	}
	j.deltas[date] += hours
	c.allocations[date] += hours
}

// rollback 按快照撤销本次尝试的全部改动，
// 容量表逐位恢复到尝试前的状态。仅适用于快照后没有
// 其他写者介入的顺序分配。
func (j *journal) rollback(c *Context) {
	for i := len(j.entries) - 1; i >= 0; i-- {
		e := j.entries[i]
		if e.existed {
			c.allocations[e.date] = e.prev
		} else {
			delete(c.allocations, e.date)
		}
	}
	j.reset()
}

// rollbackDeltas 只扣减本次尝试自己提交的工时。
// 轮转策略多任务交替提交时使用，不影响其他任务的已提交量。
func (j *journal) rollbackDeltas(c *Context) {
	for date, h := range j.deltas {
		left := c.allocations[date] - h
		if left <= hoursEpsilon {
			delete(c.allocations, date)
		} else {
			c.allocations[date] = left
		}
	}
	j.reset()
}

func (j *journal) reset() {
	j.entries = j.entries[:0]
	j.touched = make(map[string]bool)
	j.deltas = make(map[string]float64)
}

// dateOnly 去掉时间部分
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// previousDate 获取前一天日期
func previousDate(date string) string {
	t, err := model.ParseDate(date)
	if err != nil {
		return ""
	}
	return model.FormatDate(t.AddDate(0, 0, -1))
}

// nextDate 获取后一天日期
func nextDate(date string) string {
	t, err := model.ParseDate(date)
	if err != nil {
		return ""
	}
	return model.FormatDate(t.AddDate(0, 0, 1))
}
