// Package validator 提供排期结果验证功能
package validator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paiqi/paiqi/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictCapacity   ConflictType = "capacity"    // 单日容量超限
	ConflictDeadline   ConflictType = "deadline"    // 截止日期逾期
	ConflictDependency ConflictType = "dependency"  // 依赖顺序颠倒
	ConflictFixedDrift ConflictType = "fixed_drift" // 固定任务占用漂移
)

// 严重程度
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// 浮点工时比较容差
const hoursTolerance = 1e-6

// Conflict 冲突信息
type Conflict struct {
	Type        ConflictType `json:"type"`
	Severity    string       `json:"severity"` // error/warning
	TaskID      uuid.UUID    `json:"task_id,omitempty"`
	TaskName    string       `json:"task_name,omitempty"`
	Date        string       `json:"date,omitempty"`
	Description string       `json:"description"`
}

// Summary 冲突汇总
type Summary struct {
	Total    int                  `json:"total"`
	Errors   int                  `json:"errors"`
	Warnings int                  `json:"warnings"`
	ByType   map[ConflictType]int `json:"by_type"`
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	MaxHoursPerDay    float64 // 单日容量上限
	CheckDependencies bool    // 是否检查依赖顺序
	CheckFixed        bool    // 是否检查固定任务漂移
}

// DefaultValidatorConfig 返回默认配置
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		MaxHoursPerDay:    8,
		CheckDependencies: true,
		CheckFixed:        true,
	}
}

// PlanValidator 排期结果验证器。
// 对一次优化运行的产出做事后诊断，不修改任何输入。
type PlanValidator struct {
	config *ValidatorConfig
}

// NewPlanValidator 创建排期验证器
func NewPlanValidator(config *ValidatorConfig) *PlanValidator {
	if config == nil {
		config = DefaultValidatorConfig()
	}
	return &PlanValidator{config: config}
}

// Validate 检测所有冲突。
// tasks 为参与排期的全部任务（含固定任务），daily 为结果的容量占用表。
func (v *PlanValidator) Validate(tasks []*model.Task, daily map[string]float64) []Conflict {
	var conflicts []Conflict

	byID := make(map[uuid.UUID]*model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	conflicts = append(conflicts, v.detectCapacityViolations(daily)...)
	conflicts = append(conflicts, v.detectDeadlineMisses(tasks, byID)...)
	if v.config.CheckDependencies {
		conflicts = append(conflicts, v.detectDependencyViolations(tasks, byID)...)
	}
	if v.config.CheckFixed {
		conflicts = append(conflicts, v.detectFixedDrift(tasks, daily)...)
	}

	return conflicts
}

// Summarize 汇总冲突数量
func (v *PlanValidator) Summarize(conflicts []Conflict) Summary {
	s := Summary{ByType: make(map[ConflictType]int)}
	for _, c := range conflicts {
		s.Total++
		switch c.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		}
		s.ByType[c.Type]++
	}
	return s
}

// detectCapacityViolations 检测单日容量超限
func (v *PlanValidator) detectCapacityViolations(daily map[string]float64) []Conflict {
	var conflicts []Conflict

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, date := range dates {
		hours := daily[date]
		if hours > v.config.MaxHoursPerDay+hoursTolerance {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictCapacity,
				Severity:    SeverityError,
				Date:        date,
				Description: fmt.Sprintf("%s 共分配 %.1f 小时，超过单日上限 %.1f 小时", date, hours, v.config.MaxHoursPerDay),
			})
		}
	}

	return conflicts
}

// detectDeadlineMisses 检测截止日期逾期。
// 结束日晚于截止日为错误，恰好落在截止日当天为警告（没有任何余量）。
func (v *PlanValidator) detectDeadlineMisses(tasks []*model.Task, byID map[uuid.UUID]*model.Task) []Conflict {
	var conflicts []Conflict

	for _, t := range tasks {
		if t.PlannedEnd == nil {
			continue
		}
		due := effectiveDeadline(t, byID)
		if due == nil {
			continue
		}

		endDay := dateOf(*t.PlannedEnd)
		dueDay := dateOf(*due)

		switch {
		case endDay.After(dueDay):
			late := int(math.Round(endDay.Sub(dueDay).Hours() / 24))
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDeadline,
				Severity:    SeverityError,
				TaskID:      t.ID,
				TaskName:    t.Name,
				Date:        model.FormatDate(endDay),
				Description: fmt.Sprintf("任务 %s 于 %s 完成，逾期 %d 天", t.Name, model.FormatDate(endDay), late),
			})
		case endDay.Equal(dueDay):
			conflicts = append(conflicts, Conflict{
				Type:        ConflictDeadline,
				Severity:    SeverityWarning,
				TaskID:      t.ID,
				TaskName:    t.Name,
				Date:        model.FormatDate(endDay),
				Description: fmt.Sprintf("任务 %s 恰好在截止日当天完成，没有缓冲余量", t.Name),
			})
		}
	}

	return conflicts
}

// detectDependencyViolations 检测依赖顺序颠倒
func (v *PlanValidator) detectDependencyViolations(tasks []*model.Task, byID map[uuid.UUID]*model.Task) []Conflict {
	var conflicts []Conflict

	for _, t := range tasks {
		if !t.HasDependencies() || t.PlannedStart == nil {
			continue
		}
		startDay := dateOf(*t.PlannedStart)

		for _, depID := range t.DependsOn {
			dep := byID[depID]
			if dep == nil || dep.IsFinished() {
				continue
			}

			if dep.PlannedEnd == nil {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictDependency,
					Severity:    SeverityWarning,
					TaskID:      t.ID,
					TaskName:    t.Name,
					Date:        model.FormatDate(startDay),
					Description: fmt.Sprintf("任务 %s 已排期，但其依赖 %s 尚未排期", t.Name, dep.Name),
				})
				continue
			}

			depEndDay := dateOf(*dep.PlannedEnd)
			if !startDay.After(depEndDay) {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictDependency,
					Severity:    SeverityError,
					TaskID:      t.ID,
					TaskName:    t.Name,
					Date:        model.FormatDate(startDay),
					Description: fmt.Sprintf("任务 %s 于 %s 开始，早于依赖 %s 的结束日 %s", t.Name, model.FormatDate(startDay), dep.Name, model.FormatDate(depEndDay)),
				})
			}
		}
	}

	return conflicts
}

// detectFixedDrift 检测固定任务占用漂移：
// 固定任务的每一笔分配都必须原样出现在容量表里
func (v *PlanValidator) detectFixedDrift(tasks []*model.Task, daily map[string]float64) []Conflict {
	var conflicts []Conflict

	for _, t := range tasks {
		if !t.IsPinned() || len(t.DailyAllocations) == 0 {
			continue
		}

		dates := make([]string, 0, len(t.DailyAllocations))
		for d := range t.DailyAllocations {
			dates = append(dates, d)
		}
		sort.Strings(dates)

		for _, date := range dates {
			want := t.DailyAllocations[date]
			if daily[date]+hoursTolerance < want {
				conflicts = append(conflicts, Conflict{
					Type:        ConflictFixedDrift,
					Severity:    SeverityError,
					TaskID:      t.ID,
					TaskName:    t.Name,
					Date:        date,
					Description: fmt.Sprintf("固定任务 %s 在 %s 的 %.1f 小时占用未完整反映在容量表中", t.Name, date, want),
				})
			}
		}
	}

	return conflicts
}

// dateOf 截断到日期（保留时区）
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// effectiveDeadline 返回任务的有效截止日期：自身没有时沿父任务链继承
func effectiveDeadline(t *model.Task, byID map[uuid.UUID]*model.Task) *time.Time {
	visited := make(map[uuid.UUID]bool)
	for cur := t; cur != nil; {
		if visited[cur.ID] {
			return nil
		}
		visited[cur.ID] = true

		if cur.Deadline != nil {
			return cur.Deadline
		}
		if cur.ParentID == nil {
			return nil
		}
		cur = byID[*cur.ParentID]
	}
	return nil
}
